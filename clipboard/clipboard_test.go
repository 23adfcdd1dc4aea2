package clipboard

import (
	"bytes"
	"errors"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	var m Memory
	if _, err := m.ReadImage(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("ReadImage on empty = %v, want ErrEmpty", err)
	}
	src := []byte("\x89PNG fake")
	if err := m.WriteImage(src); err != nil {
		t.Fatal(err)
	}
	src[0] = 0
	got, err := m.ReadImage()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("\x89PNG fake")) {
		t.Fatalf("ReadImage = %q, stored data was aliased", got)
	}
}
