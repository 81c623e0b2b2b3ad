package detection

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"
)

// dedupThreshold is the maximum difference-hash Hamming distance at which
// two images are considered the same submission.
const dedupThreshold = 10

type hashedItem struct {
	name string
	hash *goimagehash.ImageHash
}

// dedupIndex tracks perceptual hashes across a batch so repeated
// submissions of the same image are flagged on the report. Videos and
// undecodable images pass through unhashed.
type dedupIndex struct {
	seen []hashedItem
}

func newDedupIndex() *dedupIndex {
	return &dedupIndex{}
}

// DuplicateOf returns the name of an earlier, perceptually identical image
// in the batch, or empty. Decode and hash failures degrade to no match.
func (d *dedupIndex) DuplicateOf(item *MediaItem) string {
	if item.Kind != KindImage || len(item.Data) == 0 {
		return ""
	}
	img, _, err := image.Decode(bytes.NewReader(item.Data))
	if err != nil {
		return ""
	}
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return ""
	}
	for _, prior := range d.seen {
		if dist, err := hash.Distance(prior.hash); err == nil && dist <= dedupThreshold {
			return prior.name
		}
	}
	d.seen = append(d.seen, hashedItem{name: item.Name, hash: hash})
	return ""
}
