// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package corefmt

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/zintix-labs/fastmi/errs"
)

func TestBase64(t *testing.T) {
	in := []byte{0, 1, 2, 250, 251, 252}
	s := EncodeBase64(in)
	out, err := DecodeBase64(" " + s + "\n")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("got %v want %v", out, in)
	}
	if _, err := DecodeBase64("%%%"); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam, got %v", err)
	}
}

func TestReadLabels(t *testing.T) {
	got, err := ReadLabels(strings.NewReader("a\r\n b \n\n1\nc"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b", "1", "c"}; !slices.Equal(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestReadPairs(t *testing.T) {
	a, b, err := ReadPairs(strings.NewReader("x,1\ny, 2\n\"z,w\",3\n"), ',')
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a, []string{"x", "y", "z,w"}) || !slices.Equal(b, []string{"1", "2", "3"}) {
		t.Fatalf("got %q / %q", a, b)
	}
	if _, _, err := ReadPairs(strings.NewReader("x,1\ny\n"), ','); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("ragged rows should fail, got %v", err)
	}
}

func TestReadPairFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.tsv")
	if err := os.WriteFile(path, []byte("a\t1\nb\t1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a, b, err := ReadPairFile(path)
	if err != nil || len(a) != 2 || b[1] != "1" {
		t.Fatalf("got %q / %q (%v)", a, b, err)
	}
	missing := filepath.Join(t.TempDir(), "missing")
	_, err = ReadLabelFile(missing)
	e, ok := errs.AsErr(err)
	if !ok || e.Extra != missing || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file should fail with path, got %v", err)
	}
}
