package tree

var _ RBNode[struct{}] = (*rbNode[struct{}])(nil)

// The parent is a non-owning back reference, it is only used for
// navigation (sibling, uncle, grandpa and ancestor walks).
type rbNode[T any] struct {
	parent *rbNode[T]
	left   *rbNode[T]
	right  *rbNode[T]
	value  T
	color  RBColor
}

// New node is always red.
func newRBNode[T any](val T) *rbNode[T] {
	return &rbNode[T]{
		value: val,
		color: Red,
	}
}

func (node *rbNode[T]) Value() T {
	return node.value
}

func (node *rbNode[T]) Color() RBColor {
	if node == nil {
		return Black
	}
	return node.color
}

func (node *rbNode[T]) Left() RBNode[T] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[T]) Right() RBNode[T] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *rbNode[T]) Parent() RBNode[T] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *rbNode[T]) IsLeaf() bool {
	return node != nil && node.left == nil && node.right == nil
}

func (node *rbNode[T]) IsRoot() bool {
	return node != nil && node.parent == nil
}

// All NIL nodes are considered black.
func (node *rbNode[T]) IsBlack() bool {
	return !node.IsRed()
}

func (node *rbNode[T]) IsRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[T]) direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil node without direction")
	}

	if node.parent == nil {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[T]) sibling() *rbNode[T] {
	switch node.direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *rbNode[T]) uncle() *rbNode[T] {
	if node.parent == nil {
		return nil
	}
	return node.parent.sibling()
}

func (node *rbNode[T]) grandpa() *rbNode[T] {
	if node.parent == nil {
		return nil
	}
	return node.parent.parent
}

// child returns the child in dir. The Root direction has no child.
func (node *rbNode[T]) child(dir RBDirection) *rbNode[T] {
	switch dir {
	case Left:
		return node.left
	case Right:
		return node.right
	default:
	}
	return nil
}

func (node *rbNode[T]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[T]) minimum() *rbNode[T] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[T]) maximum() *rbNode[T] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
func (node *rbNode[T]) pred() *rbNode[T] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *rbNode[T]) succ() *rbNode[T] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}

// preSucc is the next node in pre-order (node, left, right).
func (node *rbNode[T]) preSucc() *rbNode[T] {
	if node.left != nil {
		return node.left
	}
	if node.right != nil {
		return node.right
	}
	// Climb until we come up from a left subtree whose parent
	// still has an unvisited right subtree.
	for x := node; x.parent != nil; x = x.parent {
		if x == x.parent.left && x.parent.right != nil {
			return x.parent.right
		}
	}
	return nil
}

// postFirst is the first node in post-order of the subtree.
func (node *rbNode[T]) postFirst() *rbNode[T] {
	aux := node
	for aux != nil {
		if aux.left != nil {
			aux = aux.left
		} else if aux.right != nil {
			aux = aux.right
		} else {
			break
		}
	}
	return aux
}

// postSucc is the next node in post-order (left, right, node).
func (node *rbNode[T]) postSucc() *rbNode[T] {
	p := node.parent
	if p == nil {
		return nil
	}
	if node == p.left && p.right != nil {
		return p.right.postFirst()
	}
	return p
}

// unlink drops every link of the node, so a detached node
// doesn't keep the rest of the tree reachable.
func (node *rbNode[T]) unlink() {
	node.parent = nil
	node.left = nil
	node.right = nil
}
