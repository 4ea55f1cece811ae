package utils

import (
	"bytes"
	"slices"
	"testing"

	"github.com/setanarut/colorquant"
)

func TestPALRoundTrip(t *testing.T) {
	palette := []colorquant.Color{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
		{R: 0, G: 0, B: 255, A: 128},
	}
	var buf bytes.Buffer
	if err := WritePAL(&buf, palette); err != nil {
		t.Fatal(err)
	}

	got, err := ReadPAL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	// The format stores no alpha: entries come back fully opaque.
	want := []colorquant.Color{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
		{R: 0, G: 0, B: 255, A: 255},
	}
	if !slices.Equal(got, want) {
		t.Errorf("ReadPAL = %v, want %v", got, want)
	}
}

func TestWritePALEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePAL(&buf, nil); err == nil {
		t.Fatal("WritePAL with empty palette returned nil error")
	}
}

func TestReadPALRejectsOtherForms(t *testing.T) {
	// A well-formed RIFF stream with the wrong form type.
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	buf.Write([]byte{4, 0, 0, 0})
	buf.WriteString("WAVE")
	if _, err := ReadPAL(&buf); err == nil {
		t.Fatal("ReadPAL on a WAVE stream returned nil error")
	}
}

func TestReadPALGarbage(t *testing.T) {
	if _, err := ReadPAL(bytes.NewReader([]byte("not a riff stream"))); err == nil {
		t.Fatal("ReadPAL on garbage returned nil error")
	}
}
