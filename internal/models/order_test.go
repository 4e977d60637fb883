// internal/models/order_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeOrderLines(t *testing.T) {
	lines := []OrderLine{
		{Name: "Pokemon Emerald", Console: "GBA", Category: "Cartridge", Price: 35, Quantity: 2},
		{Name: "Earthbound", Console: "SNES", Category: "Complete in Box", Price: 120.5, Quantity: 1},
	}

	encoded := EncodeOrderLines(lines)
	assert.Equal(t, "Pokemon Emerald,GBA,Cartridge,35,2;Earthbound,SNES,Complete in Box,120.5,1", encoded)
}

func TestDecodeOrderLinesRoundTrip(t *testing.T) {
	lines := []OrderLine{
		{Name: "Pokemon Emerald", Console: "GBA", Category: "Cartridge", Price: 35, Quantity: 2},
		{Name: "Earthbound", Console: "SNES", Category: "Complete in Box", Price: 120.5, Quantity: 1},
	}

	decoded := DecodeOrderLines(EncodeOrderLines(lines))
	assert.Equal(t, lines, decoded)
}

func TestDecodeOrderLinesSkipsShortEntries(t *testing.T) {
	decoded := DecodeOrderLines("Pokemon Emerald,GBA,Cartridge,35,2;garbage;Earthbound,SNES,Cartridge,120,1")
	require.Len(t, decoded, 2)
	assert.Equal(t, "Pokemon Emerald", decoded[0].Name)
	assert.Equal(t, "Earthbound", decoded[1].Name)
}

func TestDecodeOrderLinesDefaultsQuantity(t *testing.T) {
	decoded := DecodeOrderLines("Earthbound,SNES,Cartridge,120,zero")
	require.Len(t, decoded, 1)
	assert.Equal(t, 1, decoded[0].Quantity)
}

func TestDecodeOrderLinesEmpty(t *testing.T) {
	assert.Nil(t, DecodeOrderLines(""))
}
