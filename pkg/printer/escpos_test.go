package printer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"grilled", "chicken", "rice"}, wrap("grilled chicken rice", 8))
	assert.Equal(t, []string{"pho bo tai"}, wrap("pho  bo tai", 20))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, wrap("abcdefghij", 4))
	assert.Equal(t, []string{""}, wrap("   ", 10))
}

func TestDishLineHangingIndent(t *testing.T) {
	doc := NewDocument(16)
	doc.DishLine(2, "Grilled chicken with rice")

	out := doc.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte{ESC, '@'}))
	assert.Contains(t, string(out), "2 x Grilled\n")
	assert.Contains(t, string(out), "    chicken with\n")
	assert.Contains(t, string(out), "    rice\n")
}

func TestKeyValueFillsWidth(t *testing.T) {
	doc := NewDocument(20)
	doc.KeyValue("Table", "T4")
	assert.Contains(t, string(doc.Bytes()), "Table"+"             "+"T4\n")
}

func TestSpoolKeepsCopies(t *testing.T) {
	spool := &Spool{}
	data := []byte("ticket")
	require.NoError(t, spool.Print(context.Background(), data))
	data[0] = 'X'

	jobs := spool.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "ticket", string(jobs[0]))
}

func TestNewPrinterFromConfig(t *testing.T) {
	p, err := NewPrinterFromConfig("none", "", "")
	require.NoError(t, err)
	assert.False(t, p.IsConnected())

	_, err = NewPrinterFromConfig("usb", "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("network", "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("bluetooth", "", "")
	assert.Error(t, err)
}
