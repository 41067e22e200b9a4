package volume

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/tiff"
)

// SupportedFormats returns the file extensions accepted as slices.
func SupportedFormats() []string {
	return []string{".tif", ".tiff", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat reports whether path has a supported image extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range SupportedFormats() {
		if ext == f {
			return true
		}
	}
	return false
}

// LoadDir loads every supported image in dir, sorted by name, as consecutive
// Z slices of a single-frame volume. A directory holding no images but
// subdirectories of them is loaded as a 4D volume, one frame per
// subdirectory in name order.
func LoadDir(dir string) (*Volume, error) {
	paths, subdirs, err := scanDir(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) > 0 {
		return LoadStack(paths)
	}
	if len(subdirs) > 0 {
		return LoadFrames(subdirs)
	}
	return nil, fmt.Errorf("no slice images found in %s", dir)
}

// LoadFrames loads each directory as one time frame. Every frame must have
// the dimensions of the first.
func LoadFrames(dirs []string) (*Volume, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no frame directories")
	}

	var vol *Volume
	for t, dir := range dirs {
		paths, _, err := scanDir(dir)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("frame %s has no slice images", filepath.Base(dir))
		}
		frame, err := LoadStack(paths)
		if err != nil {
			return nil, fmt.Errorf("frame %s: %w", filepath.Base(dir), err)
		}

		if vol == nil {
			vol, err = New(frame.Width, frame.Height, frame.Depth, len(dirs))
			if err != nil {
				return nil, err
			}
		} else if frame.Width != vol.Width || frame.Height != vol.Height || frame.Depth != vol.Depth {
			return nil, fmt.Errorf("frame %s is %dx%dx%d, expected %dx%dx%d",
				filepath.Base(dir), frame.Width, frame.Height, frame.Depth,
				vol.Width, vol.Height, vol.Depth)
		}

		// frames are contiguous blocks in Data
		n := vol.Width * vol.Height * vol.Depth
		copy(vol.Data[t*n:(t+1)*n], frame.Data)
	}

	return vol, nil
}

// scanDir returns the sorted slice images and subdirectories of dir.
func scanDir(dir string) (paths, subdirs []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read slice directory: %w", err)
	}
	for _, e := range entries {
		switch {
		case e.IsDir():
			subdirs = append(subdirs, filepath.Join(dir, e.Name()))
		case IsSupportedFormat(e.Name()):
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	sort.Strings(subdirs)
	return paths, subdirs, nil
}

// LoadStack decodes the given images as consecutive Z slices. All slices
// must share the dimensions of the first one.
func LoadStack(paths []string) (*Volume, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("empty slice stack")
	}

	var vol *Volume
	for z, path := range paths {
		img, err := decode(path)
		if err != nil {
			return nil, err
		}

		b := img.Bounds()
		if vol == nil {
			vol, err = New(b.Dx(), b.Dy(), len(paths), 1)
			if err != nil {
				return nil, err
			}
		} else if b.Dx() != vol.Width || b.Dy() != vol.Height {
			return nil, fmt.Errorf("slice %s is %dx%d, expected %dx%d",
				filepath.Base(path), b.Dx(), b.Dy(), vol.Width, vol.Height)
		}

		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				vol.Set(x, y, z, 0, float64(g.Y)/65535)
			}
		}
	}

	return vol, nil
}

func decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
