package bik

import (
	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/pack"
	"github.com/mogaika/stingray_extractor/stingray"
)

const (
	HeaderSize = 0x10
	Section    = "bik"
)

// NewFromAsset joins the main data after its header with the stream payload,
// or the gpu payload when there is no stream.
func NewFromAsset(asset *archive.Asset) (pack.Converter, error) {
	if len(asset.Main) < HeaderSize {
		return nil, stingray.Corruptf("bik header needs 0x%x bytes, have 0x%x", HeaderSize, len(asset.Main))
	}
	payload := asset.Stream
	if len(payload) == 0 {
		payload = asset.GPU
	}
	return pack.NewSections().Add(Section, "bik", asset.Main[HeaderSize:], payload), nil
}

func Register(r *pack.Registry) {
	r.SetHandler(NewFromAsset, stingray.TypeBik)
}
