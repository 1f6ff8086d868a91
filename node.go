package ntfs

import (
	"fmt"

	"github.com/dsoprea/go-logging"
)

// NtfsNode is the filesystem-facing view of one MFT entry, or of one of its
// named data streams if the entry carries more than one $DATA attribute.
type NtfsNode struct {
	Name          string
	IsDirectory   bool
	IsDeleted     bool
	IsValid       bool
	EntryIndex    uint64
	ParentEntryID *uint64

	StandardInformation *StandardInformation
	FileName            *FileName

	// Data is nil for directories, and for a stream whose builder could not
	// be constructed (for instance a non-resident stream of a table built by
	// NewMftTableFromMft, which has no partition builder to resolve runs
	// against).
	Data VFileBuilder
}

// nodesFromEntry decodes the filesystem-facing node(s) a single MFT entry
// produces: one node per $DATA attribute, or a single dataless node for
// directories and entries with no $DATA attribute at all.
func nodesFromEntry(entry *MftEntry, table *MftTable) (nodes []*NtfsNode, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	isDeleted := !entry.IsUsed()
	isValid := entry.IsValid()

	attributes, err := ReadAttributes(entry, table, table.PartitionBuilder(), table.ClusterSize())
	log.PanicIf(err)

	si := attributes.FindStandardInformation()

	var name string
	var fn *FileName
	var parentID *uint64

	if entry.EntryIndex == 5 {
		name = "root"
	} else if fn = attributes.FindFileName(); fn != nil {
		name = fn.FileName
		pid := fn.ParentMftEntryID
		parentID = &pid
	} else {
		name = fmt.Sprintf("Unknown_%d", entry.EntryIndex)
	}

	datas := attributes.FindDatas()

	if len(datas) == 0 {
		node := &NtfsNode{
			Name:                name,
			IsDirectory:         entry.IsDirectory(),
			IsDeleted:           isDeleted,
			IsValid:             isValid,
			EntryIndex:          entry.EntryIndex,
			ParentEntryID:       parentID,
			StandardInformation: si,
			FileName:            fn,
		}

		return []*NtfsNode{node}, nil
	}

	nodes = make([]*NtfsNode, 0, len(datas))

	for _, da := range datas {
		streamName := name
		if da.Raw.Name != "" {
			streamName = fmt.Sprintf("%s:%s", name, da.Raw.Name)
		}

		// A non-resident stream's builder can fail to resolve (for instance
		// when the table has no partition builder, as with
		// NewMftTableFromMft); that is not fatal to the node itself.
		builder, builderErr := da.Raw.Builder(table.PartitionBuilder(), table.ClusterSize())
		if builderErr != nil {
			builder = nil
		}

		node := &NtfsNode{
			Name:                streamName,
			IsDirectory:         false,
			IsDeleted:           isDeleted,
			IsValid:             isValid,
			EntryIndex:          entry.EntryIndex,
			ParentEntryID:       parentID,
			StandardInformation: si,
			FileName:            fn,
			Data:                builder,
		}

		nodes = append(nodes, node)
	}

	return nodes, nil
}
