package wwise

import (
	"encoding/binary"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/pack"
	"github.com/mogaika/stingray_extractor/stingray"
)

const (
	BankHeaderSize = 0x10

	StreamSection = "wem"
	BankSection   = "bnk"
)

type Bank struct {
	*pack.Sections
	Size uint32
	Id   uint64
}

// NewStreamFromAsset exports the stream extent, falling back to gpu then main.
func NewStreamFromAsset(asset *archive.Asset) (pack.Converter, error) {
	data := asset.Stream
	if len(data) == 0 {
		data = asset.GPU
	}
	if len(data) == 0 {
		data = asset.Main
	}
	return pack.NewSections().Add(StreamSection, "wem", data), nil
}

// NewBankFromAsset strips the bank header and everything after the declared
// payload size.
func NewBankFromAsset(asset *archive.Asset) (pack.Converter, error) {
	if len(asset.Main) < BankHeaderSize {
		return nil, stingray.Corruptf("wwise bank header needs 0x%x bytes, have 0x%x", BankHeaderSize, len(asset.Main))
	}
	b := &Bank{
		Size: binary.LittleEndian.Uint32(asset.Main[4:]),
		Id:   binary.LittleEndian.Uint64(asset.Main[8:]),
	}
	if int64(b.Size) > int64(len(asset.Main)-BankHeaderSize) {
		return nil, stingray.Corruptf("wwise bank payload of 0x%x bytes exceeds 0x%x", b.Size, len(asset.Main)-BankHeaderSize)
	}
	b.Sections = pack.NewSections().Add(BankSection, "bnk", asset.Main[BankHeaderSize:BankHeaderSize+int(b.Size)])
	return b, nil
}

func (b *Bank) Marshal() (interface{}, error) {
	return b, nil
}

func Register(r *pack.Registry) {
	r.SetHandler(NewStreamFromAsset, stingray.TypeWwiseStream)
	r.SetHandler(NewBankFromAsset, stingray.TypeWwiseBank)
}
