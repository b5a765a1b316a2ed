package naming

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"sync"
)

// Path joins a stem and an extension given without the dot.
func Path(stem, ext string) string {
	return stem + "." + ext
}

// Numbered returns the n-th collision variant of stem; n == 0 is the stem itself.
func Numbered(stem string, n int) string {
	if n == 0 {
		return stem
	}
	return stem + " " + strconv.Itoa(n)
}

// Exists reports whether something occupies path. Stat errors other than
// "does not exist" count as occupied.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// Resolve returns stem when stem.ext is free, otherwise the first "stem n" (n >= 1)
// whose file does not exist. It only probes the filesystem.
func Resolve(stem, ext string) string {
	return resolve(stem, ext, func(string) bool { return false })
}

// Occupied returns the stems stem, "stem 1", ... for as long as their files exist,
// stopping at the first gap.
func Occupied(stem, ext string) []string {
	var stems []string
	for n := 0; ; n++ {
		candidate := Numbered(stem, n)
		if !Exists(Path(candidate, ext)) {
			return stems
		}
		stems = append(stems, candidate)
	}
}

func resolve(stem, ext string, claimed func(string) bool) string {
	for n := 0; ; n++ {
		candidate := Numbered(stem, n)
		if !claimed(candidate) && !Exists(Path(candidate, ext)) {
			return candidate
		}
	}
}

// Reserver hands out collision-free stems to concurrent workers.
//
// A reserved stem stays claimed until [Reserver.Release], covering the window between
// resolution and the final rename.
type Reserver struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

// NewReserver creates an empty Reserver.
func NewReserver() *Reserver {
	return &Reserver{claimed: make(map[string]struct{})}
}

// Reserve resolves stem like [Resolve], additionally skipping stems already reserved.
func (r *Reserver) Reserve(stem, ext string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	got := resolve(stem, ext, func(s string) bool {
		_, ok := r.claimed[Path(s, ext)]
		return ok
	})
	r.claimed[Path(got, ext)] = struct{}{}
	return got
}

// Release frees a stem returned by Reserve.
func (r *Reserver) Release(stem, ext string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claimed, Path(stem, ext))
}
