package ntfs

import (
	"sort"

	"github.com/dsoprea/go-logging"
)

// TreeNode is one node of the filesystem hierarchy this package builds.
// Nodes backed by an MFT entry carry one; the root, orphan, and freespace
// containers the tree always has do not.
type TreeNode struct {
	name        string
	isDirectory bool
	node        *NtfsNode
	datatype    string
	dataOverride VFileBuilder

	childrenFolders sort.StringSlice
	childrenFiles   sort.StringSlice
	childrenMap     map[string]*TreeNode
}

// NewTreeNode creates a detached node; attach it with AddChild.
func NewTreeNode(name string, isDirectory bool, node *NtfsNode) *TreeNode {
	return &TreeNode{
		name:        name,
		isDirectory: isDirectory,
		node:        node,
		childrenMap: make(map[string]*TreeNode),
	}
}

// Name is the node's own path component.
func (tn *TreeNode) Name() string {
	return tn.name
}

// IsDirectory reports whether this node can have children.
func (tn *TreeNode) IsDirectory() bool {
	return tn.isDirectory
}

// Node is the decoded MFT-entry view backing this node, or nil for a
// synthetic container (root, orphan, freespace).
func (tn *TreeNode) Node() *NtfsNode {
	return tn.node
}

// SetDatatype tags the node the way $Boot, $MFT, and $MFTMirr are tagged, to
// keep a downstream scanner from treating their content as an embedded
// filesystem.
func (tn *TreeNode) SetDatatype(datatype string) {
	tn.datatype = datatype
}

// Datatype returns the tag set by SetDatatype, or "" if none.
func (tn *TreeNode) Datatype() string {
	return tn.datatype
}

// SetData attaches a builder directly, for synthetic nodes that have no
// backing NtfsNode of their own (freespace is the only one).
func (tn *TreeNode) SetData(b VFileBuilder) {
	tn.dataOverride = b
}

// Data returns the node's content builder: the override set by SetData if
// present, otherwise its backing NtfsNode's Data, otherwise nil.
func (tn *TreeNode) Data() VFileBuilder {
	if tn.dataOverride != nil {
		return tn.dataOverride
	}

	if tn.node != nil {
		return tn.node.Data
	}

	return nil
}

// AddChild attaches child under tn, keeping directories and files each in
// sorted order so Children and List are deterministic.
func (tn *TreeNode) AddChild(child *TreeNode) {
	if tn.childrenMap == nil {
		tn.childrenMap = make(map[string]*TreeNode)
	}

	tn.childrenMap[child.name] = child

	list := &tn.childrenFiles
	if child.isDirectory {
		list = &tn.childrenFolders
	}

	i := list.Search(child.name)
	*list = append(*list, "")
	copy((*list)[i+1:], (*list)[i:])
	(*list)[i] = child.name
}

// Lookup resolves a slash-free path, given as its components, relative to
// tn. It returns nil on a miss.
func (tn *TreeNode) Lookup(parts []string) *TreeNode {
	if len(parts) == 0 {
		return tn
	}

	child, found := tn.childrenMap[parts[0]]
	if !found {
		return nil
	}

	return child.Lookup(parts[1:])
}

// Children returns tn's children, directories first, each group sorted by
// name.
func (tn *TreeNode) Children() []*TreeNode {
	children := make([]*TreeNode, 0, len(tn.childrenFolders)+len(tn.childrenFiles))

	for _, name := range tn.childrenFolders {
		children = append(children, tn.childrenMap[name])
	}

	for _, name := range tn.childrenFiles {
		children = append(children, tn.childrenMap[name])
	}

	return children
}

func (tn *TreeNode) visit(prefix string, sep string, paths *[]string, nodes map[string]*TreeNode) {
	for _, child := range tn.Children() {
		path := child.name
		if prefix != "" {
			path = prefix + sep + child.name
		}

		*paths = append(*paths, path)
		nodes[path] = child

		if child.isDirectory {
			child.visit(path, sep, paths, nodes)
		}
	}
}

// List walks the full subtree rooted at tn and returns every descendant
// path alongside a lookup map from path to node.
func (tn *TreeNode) List(sep string) ([]string, map[string]*TreeNode) {
	paths := make([]string, 0)
	nodes := make(map[string]*TreeNode)

	tn.visit("", sep, &paths, nodes)

	return paths, nodes
}

// Tree is the full filesystem hierarchy produced from one NTFS volume: a
// root directory, an orphan container for entries whose parent could not be
// resolved, and a freespace container holding the volume's unallocated
// clusters.
type Tree struct {
	root      *TreeNode
	orphan    *TreeNode
	freespace *TreeNode
}

// NewTree creates an empty tree with its three fixed top-level containers.
func NewTree() *Tree {
	return &Tree{
		root:      NewTreeNode("root", true, nil),
		orphan:    NewTreeNode("orphan", true, nil),
		freespace: NewTreeNode("freespace", true, nil),
	}
}

// Root is the node holding the volume's actual directory hierarchy.
func (t *Tree) Root() *TreeNode {
	return t.root
}

// Orphan collects entries whose parent directory could not be found.
func (t *Tree) Orphan() *TreeNode {
	return t.orphan
}

// Freespace holds the unallocated-cluster ranges $Bitmap describes.
func (t *Tree) Freespace() *TreeNode {
	return t.freespace
}

type nodeRegistration struct {
	ParentID *uint64
	TreeNode *TreeNode
}

// Ntfs ties an MftTable to the node-linking bookkeeping create_nodes/
// link_nodes needs: for every entry index, every node it produced and the
// parent entry id (if any) that node claims.
type Ntfs struct {
	Table *MftTable

	nodesByEntry map[uint64][]nodeRegistration
}

// NewNtfs wraps an already-open MftTable.
func NewNtfs(table *MftTable) *Ntfs {
	return &Ntfs{
		Table:        table,
		nodesByEntry: make(map[uint64][]nodeRegistration),
	}
}

// CreateNodes decodes every entry but $MFT itself (index 0, already parsed
// to bootstrap the table) into TreeNode instances, without attaching them
// anywhere yet. Corrupt or unreadable entries are skipped rather than
// aborting the whole scan.
func (n *Ntfs) CreateNodes() {
	numberOfEntries := n.Table.NumberOfEntries()

	for i := uint64(1); i < numberOfEntries; i++ {
		entry, err := n.Table.Entry(i)
		if err != nil {
			log.PrintError(err)
			continue
		}

		nodes, err := nodesFromEntry(entry, n.Table)
		if err != nil {
			log.PrintError(err)
			continue
		}

		regs := make([]nodeRegistration, 0, len(nodes))

		for _, node := range nodes {
			tn := NewTreeNode(node.Name, node.IsDirectory, node)

			var parentID *uint64
			if node.ParentEntryID != nil && *node.ParentEntryID != i {
				parentID = node.ParentEntryID
			}

			regs = append(regs, nodeRegistration{ParentID: parentID, TreeNode: tn})
		}

		n.nodesByEntry[i] = regs
	}
}

// LinkNodes attaches every node CreateNodes produced under tree: entry 5's
// first node becomes the hierarchy root; every other node attaches under
// the first-registered node of its claimed parent entry, or under
// tree.Orphan() if the parent is absent, unknown, or would be a self-loop.
func (n *Ntfs) LinkNodes(tree *Tree) {
	if rootRegs, found := n.nodesByEntry[5]; found && len(rootRegs) > 0 {
		tree.Root().AddChild(rootRegs[0].TreeNode)
	}

	for entryID, regs := range n.nodesByEntry {
		if entryID == 5 {
			continue
		}

		for _, reg := range regs {
			if reg.ParentID == nil {
				tree.Orphan().AddChild(reg.TreeNode)
				continue
			}

			parentRegs, found := n.nodesByEntry[*reg.ParentID]
			if !found || len(parentRegs) == 0 || parentRegs[0].TreeNode == reg.TreeNode {
				tree.Orphan().AddChild(reg.TreeNode)
				continue
			}

			parentRegs[0].TreeNode.AddChild(reg.TreeNode)
		}
	}
}
