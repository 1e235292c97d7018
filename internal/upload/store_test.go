package upload

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFiles(n int) []*File {
	files := make([]*File, n)
	for i := range files {
		files[i] = FromBytes(fmt.Sprintf("shot-%02d.png", i), MediaTypePNG, []byte{byte(i)})
	}
	return files
}

func TestStore_SelectCapsAndPreservesOrder(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 25} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			s := NewStore()
			input := makeFiles(n)

			dropped := s.Select(input)

			want := n
			if want > MaxFiles {
				want = MaxFiles
			}
			require.Equal(t, want, s.Count())
			assert.Equal(t, n-want, dropped)
			for i, f := range s.Files() {
				assert.Same(t, input[i], f)
			}
		})
	}
}

func TestStore_SelectReplacesWholesale(t *testing.T) {
	s := NewStore()
	first := makeFiles(3)
	s.Select(first)

	second := makeFiles(1)
	s.Select(second)

	files := s.Files()
	require.Len(t, files, 1)
	assert.Same(t, second[0], files[0])
}

func TestStore_ClearAndEmpty(t *testing.T) {
	s := NewStore()
	assert.True(t, s.IsEmpty())

	s.Select(makeFiles(2))
	assert.False(t, s.IsEmpty())
	assert.Equal(t, int64(2), s.TotalSize())

	s.Clear()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, int64(0), s.TotalSize())
}

func TestStore_FilesIsSnapshot(t *testing.T) {
	s := NewStore()
	s.Select(makeFiles(2))

	snap := s.Files()
	snap[0] = nil

	assert.NotNil(t, s.Files()[0])
}

func TestFile_OpenFromBytes(t *testing.T) {
	data := []byte("png-bytes")
	f := FromBytes("a.png", MediaTypePNG, data)
	data[0] = 'X'

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()

	buf := make([]byte, 3)
	_, err = rc.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "png", string(buf))
	assert.Equal(t, "mem:a.png", f.Key())
}

func TestMediaTypeFor(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"a.png", MediaTypePNG, false},
		{"b.JPG", MediaTypeJPEG, false},
		{"c.jpeg", MediaTypeJPEG, false},
		{"d.gif", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MediaTypeFor(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
