package ntfs

import (
	"github.com/dsoprea/go-logging"
)

var (
	analyzeLog = log.NewLogger("ntfs.analyze")
)

// Analyze is this package's single external entrypoint: given a builder for
// an NTFS partition image, it parses the boot sector, loads the Master File
// Table, links every entry into a filesystem tree, tags $Boot and $MFTMirr
// in place and synthesizes $MFT's own node (entry 0 is bootstrapped
// separately and never reaches the normal CreateNodes walk) so a caller
// walking the result does not recurse into their raw bytes looking for an
// embedded filesystem, and attaches the volume's unallocated-cluster
// freespace under Tree.Freespace().
//
// recovery requests carving of unreferenced MFT entries and orphaned data
// out of freespace; this is not implemented and Analyze only logs that it
// was asked for, matching how the original plugin left it a documented stub
// rather than guessing at its behavior.
func Analyze(partitionBuilder VFileBuilder, recovery bool) (tree *Tree, bs *BootSector, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	pf, err := partitionBuilder.Open()
	log.PanicIf(err)

	bs, err = NewBootSector(pf)
	log.PanicIf(err)

	table, err := NewMftTableFromPartition(partitionBuilder, bs)
	log.PanicIf(err)

	tree = NewTree()

	n := NewNtfs(table)
	n.CreateNodes()
	n.LinkNodes(tree)

	mftNodes, err := nodesFromEntry(table.MasterEntry(), table)
	if err == nil {
		for _, mn := range mftNodes {
			tn := NewTreeNode(mn.Name, mn.IsDirectory, mn)
			tn.SetDatatype("ntfs/mft")
			tree.Root().AddChild(tn)
		}
	} else {
		log.PrintError(err)
	}

	tagRootChild(tree, "$Boot", "ntfs/bootsector")
	tagRootChild(tree, "$MFTMirr", "ntfs/mft")

	if recovery {
		analyzeLog.Warningf(nil, "recovery requested but carving of unallocated space is not implemented")
	}

	if err := BuildFreespace(tree, table); err != nil {
		log.PrintError(err)
	}

	return tree, bs, nil
}

// tagRootChild finds the entry-derived node the normal CreateNodes/LinkNodes
// walk already attached under the root directory (entry 5's "root" node) by
// its file name and tags it in place, rather than fabricating a
// disconnected duplicate.
func tagRootChild(tree *Tree, name string, datatype string) {
	tn := tree.Root().Lookup([]string{"root", name})
	if tn == nil {
		analyzeLog.Warningf(nil, "%s not found under root, leaving untagged", name)
		return
	}

	tn.SetDatatype(datatype)
}
