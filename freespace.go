package ntfs

import (
	"io/ioutil"

	"github.com/dsoprea/go-logging"
)

// BuildFreespace locates $Bitmap under the root directory (entry 5's "root"
// node beneath tree's root), decodes its unallocated
// cluster ranges, and attaches a mapped builder over those ranges to
// tree.Freespace(). Each unallocated run is kept as its own range in the
// mapping rather than coalesced, so a later reader can still attribute a
// freespace byte offset back to the cluster range it came from.
func BuildFreespace(tree *Tree, table *MftTable) (err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	bitmapNode := tree.Root().Lookup([]string{"root", "$Bitmap"})
	if bitmapNode == nil {
		log.Panicf("$Bitmap not found under root")
	}

	bitmapBuilder := bitmapNode.Data()
	if bitmapBuilder == nil {
		log.Panicf("$Bitmap has no readable data")
	}

	vf, err := bitmapBuilder.Open()
	log.PanicIf(err)

	content, err := ioutil.ReadAll(vf)
	log.PanicIf(err)

	clusterRanges := decodeBitmapUnallocatedRanges(content)

	clusterSize := table.ClusterSize()
	partitionBuilder := table.PartitionBuilder()

	ranges := NewFileRanges()
	cursor := uint64(0)

	for _, cr := range clusterRanges {
		srcOffset := cr.Start * clusterSize
		size := (1 + cr.End - cr.Start) * clusterSize

		err = ranges.Push(cursor, cursor+size, srcOffset, partitionBuilder)
		log.PanicIf(err)

		cursor += size
	}

	if cursor > 0 {
		tree.Freespace().SetData(NewMappedVFileBuilder(ranges))
	}

	return nil
}
