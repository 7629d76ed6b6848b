package vm

import (
	"fmt"
	"math/big"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Program images: CBOR encoding of a base image
// ---------------------------------------------------------------------------

// ImageMagic identifies an Intcode program image.
const ImageMagic = "ICPI"

// ImageVersion is the current image format version.
const ImageVersion uint = 1

// Image is the serialized form of a Program. Cells are sparse so patched
// programs with far-away addresses stay small. Values larger than 64 bits
// are written as CBOR bignums.
type Image struct {
	Magic   string             `cbor:"magic"`
	Version uint               `cbor:"version"`
	Size    int64              `cbor:"size"`
	Cells   map[int64]*big.Int `cbor:"cells"`
}

var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	imageEncMode = em
}

// MarshalImage serializes a program to CBOR bytes. Encoding is canonical,
// so equal programs produce identical bytes.
func MarshalImage(p *Program) ([]byte, error) {
	img := Image{
		Magic:   ImageMagic,
		Version: ImageVersion,
		Size:    p.mem.size,
		Cells:   p.mem.cells,
	}
	return imageEncMode.Marshal(&img)
}

// UnmarshalImage deserializes a program from CBOR bytes. The recorded size
// must be one past the highest stored cell.
func UnmarshalImage(data []byte) (*Program, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("vm: unmarshal image: %w", err)
	}
	if img.Magic != ImageMagic {
		return nil, fmt.Errorf("vm: not a program image (magic %q)", img.Magic)
	}
	if img.Version > ImageVersion {
		return nil, fmt.Errorf("vm: unsupported image version %d", img.Version)
	}

	mem := NewMemory()
	for addr, v := range img.Cells {
		if v == nil {
			continue
		}
		if err := mem.Write(addr, v); err != nil {
			return nil, fmt.Errorf("vm: image cell: %w", err)
		}
	}
	if img.Size != mem.size {
		return nil, fmt.Errorf("vm: image size %d does not match cells (want %d)", img.Size, mem.size)
	}
	return &Program{mem: mem}, nil
}

// WriteImageFile writes the program image to path.
func WriteImageFile(path string, p *Program) error {
	data, err := MarshalImage(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// ReadImageFile loads a program image from path.
func ReadImageFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return UnmarshalImage(data)
}
