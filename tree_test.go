package ntfs

import (
	"testing"
)

func TestTreeNode_AddChild_DirectoriesBeforeFilesSorted(t *testing.T) {
	root := NewTreeNode("root", true, nil)

	root.AddChild(NewTreeNode("zebra.txt", false, nil))
	root.AddChild(NewTreeNode("apple.txt", false, nil))
	root.AddChild(NewTreeNode("Documents", true, nil))
	root.AddChild(NewTreeNode("Backups", true, nil))

	children := root.Children()

	expected := []string{"Backups", "Documents", "apple.txt", "zebra.txt"}

	if len(children) != len(expected) {
		t.Fatalf("expected %d children, got %d", len(expected), len(children))
	}

	for i, name := range expected {
		if children[i].Name() != name {
			t.Fatalf("child %d: expected %q, got %q", i, name, children[i].Name())
		}
	}
}

func TestTreeNode_Lookup(t *testing.T) {
	root := NewTreeNode("root", true, nil)
	docs := NewTreeNode("Documents", true, nil)
	report := NewTreeNode("report.txt", false, nil)

	docs.AddChild(report)
	root.AddChild(docs)

	found := root.Lookup([]string{"Documents", "report.txt"})
	if found != report {
		t.Fatalf("expected to find report.txt")
	}

	if root.Lookup([]string{"Documents", "missing.txt"}) != nil {
		t.Fatalf("expected a miss for an unknown path")
	}

	if root.Lookup([]string{}) != root {
		t.Fatalf("expected an empty path to resolve to the node itself")
	}
}

func TestTreeNode_List(t *testing.T) {
	root := NewTreeNode("root", true, nil)
	docs := NewTreeNode("Documents", true, nil)
	docs.AddChild(NewTreeNode("a.txt", false, nil))
	root.AddChild(docs)
	root.AddChild(NewTreeNode("b.txt", false, nil))

	paths, nodes := root.List("/")

	expected := []string{"Documents", "Documents/a.txt", "b.txt"}

	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %v", len(expected), paths)
	}

	for i, p := range expected {
		if paths[i] != p {
			t.Fatalf("path %d: expected %q, got %q", i, p, paths[i])
		}
	}

	if _, found := nodes["Documents/a.txt"]; !found {
		t.Fatalf("expected Documents/a.txt in the lookup map")
	}
}

func TestTreeNode_DataPrefersOverride(t *testing.T) {
	tn := NewTreeNode("thing", false, nil)

	if tn.Data() != nil {
		t.Fatalf("expected nil data for a bare node")
	}

	b := NewMemoryVFileBuilderFromBytes([]byte("x"))
	tn.SetData(b)

	if tn.Data() != VFileBuilder(b) {
		t.Fatalf("expected the override builder to be returned")
	}
}

func TestLinkNodes_RootEntryBecomesTreeRoot(t *testing.T) {
	tree := NewTree()
	n := &Ntfs{nodesByEntry: make(map[uint64][]nodeRegistration)}

	rootTreeNode := NewTreeNode("root", true, nil)
	n.nodesByEntry[5] = []nodeRegistration{{ParentID: nil, TreeNode: rootTreeNode}}

	parentID := uint64(5)
	childTreeNode := NewTreeNode("a.txt", false, nil)
	n.nodesByEntry[40] = []nodeRegistration{{ParentID: &parentID, TreeNode: childTreeNode}}

	n.LinkNodes(tree)

	if len(tree.Root().Children()) != 1 || tree.Root().Children()[0] != rootTreeNode {
		t.Fatalf("expected entry 5 to attach under tree root")
	}

	if len(rootTreeNode.Children()) != 1 || rootTreeNode.Children()[0] != childTreeNode {
		t.Fatalf("expected entry 40 to attach under the root's tree node")
	}
}

func TestLinkNodes_UnresolvedParentGoesToOrphan(t *testing.T) {
	tree := NewTree()
	n := &Ntfs{nodesByEntry: make(map[uint64][]nodeRegistration)}

	missingParent := uint64(999)
	orphanTreeNode := NewTreeNode("lost.txt", false, nil)
	n.nodesByEntry[41] = []nodeRegistration{{ParentID: &missingParent, TreeNode: orphanTreeNode}}

	n.LinkNodes(tree)

	if len(tree.Orphan().Children()) != 1 || tree.Orphan().Children()[0] != orphanTreeNode {
		t.Fatalf("expected the node with an unresolved parent to land in orphan")
	}
}

func TestLinkNodes_SelfLoopGoesToOrphan(t *testing.T) {
	tree := NewTree()
	n := &Ntfs{nodesByEntry: make(map[uint64][]nodeRegistration)}

	selfID := uint64(42)
	selfTreeNode := NewTreeNode("weird", true, nil)
	n.nodesByEntry[42] = []nodeRegistration{{ParentID: &selfID, TreeNode: selfTreeNode}}

	n.LinkNodes(tree)

	if len(tree.Orphan().Children()) != 1 || tree.Orphan().Children()[0] != selfTreeNode {
		t.Fatalf("expected a self-referential node to land in orphan")
	}
}
