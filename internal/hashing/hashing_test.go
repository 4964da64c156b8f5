package hashing

import "testing"

func TestDigest(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "empty input",
			data: []byte{},
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "known vector",
			data: []byte("hello world"),
			want: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Digest(tt.data); got != tt.want {
				t.Errorf("Digest() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDigestDeterministic(t *testing.T) {
	// Identical byte sequences must hash identically regardless of how the
	// content was produced.
	asString := DigestString("<h1>Pricing</h1>")
	asBytes := Digest([]byte("<h1>Pricing</h1>"))
	if asString != asBytes {
		t.Errorf("digest differs by encoding path: %s vs %s", asString, asBytes)
	}

	if Digest([]byte("a")) == Digest([]byte("b")) {
		t.Error("distinct inputs produced the same digest")
	}
}
