package tree

import (
	"errors"
	"sync/atomic"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	ErrRBTreeNilComparator   = errors.New("[rbtree] comparator is required")
	ErrRBTreeEmpty           = errors.New("[rbtree] there is no element")
	ErrRBTreeInvalidArgument = errors.New("[rbtree] invalid argument")
	ErrRBTreeRedViolation    = errors.New("[rbtree] red violation")
	ErrRBTreeBlackViolation  = errors.New("[rbtree] black violation")
	ErrRBTreeOrderViolation  = errors.New("[rbtree] order violation")
	ErrRBTreeLinkViolation   = errors.New("[rbtree] parent link violation")
	ErrRBTreeCountViolation  = errors.New("[rbtree] count violation")
)

var _ RBTree[struct{}] = (*rbTree[struct{}])(nil)

type rbTree[T any] struct {
	root            *rbNode[T]
	cmp             infra.Comparator[T]
	stats           *rbtreeStats
	statsName       string
	count           int64
	rmBorrow        RBRemoveBorrow
	allowDuplicates bool
	isDesc          bool
	isStatsEnabled  bool
}

func (tree *rbTree[T]) Count() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[T]) AllowDuplicates() bool {
	return tree.allowDuplicates
}

func (tree *rbTree[T]) RootNode() RBNode[T] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// Height is the number of nodes on the longest root to leaf path.
func (tree *rbTree[T]) Height() int {
	return height(tree.root)
}

func height[T any](node *rbNode[T]) int {
	if node == nil {
		return 0
	}
	return 1 + max(height(node.left), height(node.right))
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[T]) leftRotate(x *rbNode[T]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.parent = p
	tree.stats.recordRotation(Left)
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[T]) rightRotate(x *rbNode[T]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.parent = p
	tree.stats.recordRotation(Right)
}

// Add returns false if the duplicates are disabled and an equal
// item is present already.
func (tree *rbTree[T]) Add(item T) bool {
	if /* i1 */ tree.root == nil {
		tree.root = newRBNode[T](item)
		tree.root.color = Black
		atomic.AddInt64(&tree.count, 1)
		tree.stats.recordFixup(insertFixup, 1)
		tree.stats.recordInsert()
		return true
	}

	var x, y = tree.root, (*rbNode[T])(nil)
	res := int64(0)
	for x != nil {
		y = x
		res = tree.cmp(item, x.value)
		if /* equal */ res == 0 && !tree.allowDuplicates {
			return false
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater or equal */ {
			x = x.right
		}
	}

	z := newRBNode[T](item)
	z.parent = y
	if res < 0 {
		y.left = z
	} else {
		y.right = z
	}

	tree.insertRebalance(z)
	atomic.AddInt64(&tree.count, 1)
	tree.stats.recordInsert()
	return true
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

i1: Current node X is the root, repaint it into black.

i2: Current node X's parent P is black, hold p3 and p4.

i3: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Recursive to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

i4: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P (inner grandchild). Rotate P to
opposite direction. After rotation it is still red-violation.
Here must enter i5 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

i5: Handle i4 scenario, current node is the same direction as parent
(outer grandchild).

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[T]) insertRebalance(x *rbNode[T]) {
	for {
		if /* i1 */ x.parent == nil {
			x.color = Black
			tree.stats.recordFixup(insertFixup, 1)
			return
		}

		if /* i2 */ x.parent.IsBlack() {
			tree.stats.recordFixup(insertFixup, 2)
			return
		}

		// The red parent is never the root, so the grandpa exists.
		gp := x.grandpa()
		if gp == nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] red parent without grandpa, insert violate (i3)")
		}

		if u := x.uncle(); /* i3 */ u.IsRed() {
			x.parent.color = Black
			u.color = Black
			gp.color = Red
			tree.stats.recordFixup(insertFixup, 3)
			x = gp
			continue
		}

		dir, pDir := x.direction(), x.parent.direction()
		if /* i4 */ dir != pDir {
			p := x.parent
			switch dir {
			case Left:
				tree.rightRotate(p)
			case Right:
				tree.leftRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] insert violate (i4)")
			}
			tree.stats.recordFixup(insertFixup, 4)
			x = p // enter i5 to fix
		}

		/* i5 */
		x.parent.color = Black
		gp.color = Red
		switch pDir {
		case Left:
			tree.rightRotate(gp)
		case Right:
			tree.leftRotate(gp)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert violate (i5)")
		}
		tree.stats.recordFixup(insertFixup, 5)
		return
	}
}

func (tree *rbTree[T]) search(item T) *rbNode[T] {
	for aux := tree.root; aux != nil; {
		res := tree.cmp(item, aux.value)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTree[T]) Contains(item T) bool {
	return tree.search(item) != nil
}

// Search descends from the root. fn returns 0 to stop at the node,
// a positive number to turn right and a negative number to turn left.
func (tree *rbTree[T]) Search(fn func(RBNode[T]) int64) RBNode[T] {
	if fn == nil {
		return nil
	}
	for aux := tree.root; aux != nil; {
		res := fn(aux)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTree[T]) MinValue() (T, error) {
	if tree.root == nil {
		return *new(T), ErrRBTreeEmpty
	}
	return tree.root.minimum().value, nil
}

func (tree *rbTree[T]) MaxValue() (T, error) {
	if tree.root == nil {
		return *new(T), ErrRBTreeEmpty
	}
	return tree.root.maximum().value, nil
}

// Remove removes one node that compares equal to item.
func (tree *rbTree[T]) Remove(item T) bool {
	z := tree.search(item)
	if z == nil {
		return false
	}
	tree.removeNode(z)
	return true
}

func (tree *rbTree[T]) RemoveMin() (T, error) {
	if tree.root == nil {
		return *new(T), ErrRBTreeEmpty
	}
	z := tree.root.minimum()
	tree.removeNode(z)
	return z.value, nil
}

func (tree *rbTree[T]) RemoveMax() (T, error) {
	if tree.root == nil {
		return *new(T), ErrRBTreeEmpty
	}
	z := tree.root.maximum()
	tree.removeNode(z)
	return z.value, nil
}

// borrow picks the node which takes over the position of z.
// z has two children here.
func (tree *rbTree[T]) borrow(z *rbNode[T]) *rbNode[T] {
	switch tree.rmBorrow {
	case RemoveBorrowSucc:
		return z.succ()
	case RemoveBorrowPred:
		return z.pred()
	default:
	}
	succ := z.succ()
	if succ.IsBlack() && succ.IsLeaf() {
		return z.pred()
	}
	return succ
}

/*
swapNode exchanges the positions of x and y, including the colors.
The values stay in their own nodes, so the node identity survives.

Non-adjacent:

	  |        |                 |        |
	  X        Y                 Y        X
	 / \      / \   swap(X, Y)  / \      / \
	L   R    Yl  Yr ========>  L   R    Yl  Yr

Adjacent (Y is the child of X):

	  |                    |
	  X                    Y
	 / \                  / \
	Y   R   swap(X, Y)   X   R
   / \      =========>  / \
  Yl  Yr              Yl  Yr
*/
func (tree *rbTree[T]) swapNode(x, y *rbNode[T]) {
	if x == nil || y == nil || x == y {
		return
	}
	if x.parent == y {
		x, y = y, x
	}

	xp, xl, xr, xDir := x.parent, x.left, x.right, x.direction()
	yp, yl, yr, yDir := y.parent, y.left, y.right, y.direction()

	if yp == x {
		y.parent = xp
		if yDir == Left {
			y.left, y.right = x, xr
		} else {
			y.left, y.right = xl, x
		}
		x.parent = y
	} else {
		y.parent, y.left, y.right = xp, xl, xr
		x.parent = yp
		switch yDir {
		case Root:
			tree.root = x
		case Left:
			yp.left = x
		case Right:
			yp.right = x
		default:
		}
	}
	x.left, x.right = yl, yr

	switch xDir {
	case Root:
		tree.root = y
	case Left:
		xp.left = y
	case Right:
		xp.right = y
	default:
	}

	x.fixLink()
	y.fixLink()
	x.color, y.color = y.color, x.color
}

// replaceChild puts child in the place of node.
func (tree *rbTree[T]) replaceChild(node, child *rbNode[T]) {
	switch node.direction() {
	case Root:
		tree.root = child
	case Left:
		node.parent.left = child
	case Right:
		node.parent.right = child
	default:
	}
	if child != nil {
		child.parent = node.parent
	}
}

/*
r1: Current node Z has left and right node.
Find node Z's pred or succ (Y) to replace it to be removed.
Swap the positions of Z and Y, not the values.
Then Z has one child at most.

Find succ:

	  |                    |
	  Z                    Y
	 / \                  / \
	L  ..   swap(Z, Y)   L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  Y  ..                Z  ..

r2: Current node Z is a red node, it must be a leaf node.
Remove directly.

r3: Current node Z is a black node with a child node.
The child node must be a red node. (See conclusion. Otherwise,
black-violation) Repaint the child into black and replace Z.

r4: Current node Z is a black leaf node, we have to rebalance
before unlink it. (black-violation)
*/
func (tree *rbTree[T]) removeNode(z *rbNode[T]) {
	if /* r1 */ z.left != nil && z.right != nil {
		tree.swapNode(z, tree.borrow(z))
	}

	child := z.left
	if child == nil {
		child = z.right
	}

	if /* r2 */ z.IsRed() {
		if child != nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] red node with a single child, remove violate (r2)")
		}
		tree.replaceChild(z, nil)
	} else if /* r3 */ child != nil {
		if child.IsBlack() {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] black node with a single black child, remove violate (r3)")
		}
		tree.replaceChild(z, child)
		child.color = Black
	} else /* r4 */ {
		tree.removeRebalance(z)
		tree.replaceChild(z, nil)
	}

	z.unlink()
	atomic.AddInt64(&tree.count, -1)
	tree.stats.recordRemove()
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the same direction to X and it X's sibling's child node (near).
Sd is the opposite direction to X and it X's sibling's child node (far).

rm1: Current node X is the root. Nothing to do.

rm2: Current node X's sibling S is red, so the parent P, nephew node Sc and Sd
must be black. (Otherwise, red-violation)
(1) repaint S into black, P into red.
(2) X is left node of P, left rotate P.
(3) X is right node of P, right rotate P.
Enter rm3-rm6 with the new sibling Sc.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [D]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm3: All of current node X's parent P, the sibling S, nephew node Sc and Sd
are black.
Unable to satisfy p4. We have to paint the S into red to satisfy
p4 locally. Then recursive to handle P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: Current node X's parent P is red, the sibling S, nephew node Sc and Sd
is black.
Repaint S into red and P into black.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm5: Current node X's sibling S is black, nephew node Sc is red and Sd
is black. Ignore X's parent P's color (red or black is okay)
(1) If X is left node of P, right rotate S.
(2) If X is right node of P, left rotate S.
(3) Repaint S into red, Sc into black
Enter into rm6 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm6: Current node X's sibling S is black, nephew node Sd is red.
Ignore X's parent P's color (red or black is okay)
(1) Repaint S into P's color, P into black and Sd into black.
(2) If X is left node of P, left rotate P.
(3) If X is right node of P, right rotate P.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[T]) removeRebalance(x *rbNode[T]) {
	for {
		if /* rm1 */ x.parent == nil {
			tree.stats.recordFixup(removeFixup, 1)
			return
		}

		dir := x.direction()
		sibling := x.sibling()
		if sibling == nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] black node without sibling, remove violate (rm1)")
		}

		if /* rm2 */ sibling.IsRed() {
			sibling.color = Black
			x.parent.color = Red
			switch dir {
			case Left:
				tree.leftRotate(x.parent)
			case Right:
				tree.rightRotate(x.parent)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] remove violate (rm2)")
			}
			tree.stats.recordFixup(removeFixup, 2)
			sibling = x.sibling()
		}

		var sc, sd *rbNode[T]
		switch dir {
		case Left:
			sc, sd = sibling.left, sibling.right
		case Right:
			sc, sd = sibling.right, sibling.left
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate (rm3)")
		}

		if sc.IsBlack() && sd.IsBlack() {
			if /* rm3 */ x.parent.IsBlack() {
				sibling.color = Red
				tree.stats.recordFixup(removeFixup, 3)
				x = x.parent
				continue
			}
			/* rm4 */
			sibling.color = Red
			x.parent.color = Black
			tree.stats.recordFixup(removeFixup, 4)
			return
		}

		if /* rm5 */ sd.IsBlack() {
			switch dir {
			case Left:
				tree.rightRotate(sibling)
			case Right:
				tree.leftRotate(sibling)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] remove violate (rm5)")
			}
			sc.color = Black
			sibling.color = Red
			tree.stats.recordFixup(removeFixup, 5)
			sibling, sd = sc, sibling
		}

		/* rm6 */
		sibling.color = x.parent.color
		x.parent.color = Black
		sd.color = Black
		switch dir {
		case Left:
			tree.leftRotate(x.parent)
		case Right:
			tree.rightRotate(x.parent)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate (rm6)")
		}
		tree.stats.recordFixup(removeFixup, 6)
		return
	}
}

// Clear unlinks all nodes by the inorder traversal.
func (tree *rbTree[T]) Clear() {
	size := atomic.LoadInt64(&tree.count)
	aux := tree.root
	tree.root = nil
	if size <= 0 || aux == nil {
		atomic.StoreInt64(&tree.count, 0)
		return
	}

	stack := make([]*rbNode[T], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		aux = stack[size-1]
		r := aux.right
		aux.unlink()
		atomic.AddInt64(&tree.count, -1)
		tree.stats.recordClear()
		stack = stack[:size-1]
		for aux = r; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

type RBTreeOpt[T any] func(*rbTree[T])

func WithRBTreeDesc[T any]() RBTreeOpt[T] {
	return func(tree *rbTree[T]) {
		tree.isDesc = true
	}
}

func WithRBTreeDuplicates[T any]() RBTreeOpt[T] {
	return func(tree *rbTree[T]) {
		tree.allowDuplicates = true
	}
}

func WithRBTreeRemoveBorrow[T any](policy RBRemoveBorrow) RBTreeOpt[T] {
	return func(tree *rbTree[T]) {
		tree.rmBorrow = policy
	}
}

func WithRBTreeStats[T any](name string) RBTreeOpt[T] {
	return func(tree *rbTree[T]) {
		tree.isStatsEnabled = true
		tree.statsName = name
	}
}

// NewRBTree fails without a comparator and no tree is returned.
func NewRBTree[T any](cmp infra.Comparator[T], opts ...RBTreeOpt[T]) (RBTree[T], error) {
	if cmp == nil {
		return nil, infra.WrapErrorStack(ErrRBTreeNilComparator)
	}

	tree := &rbTree[T]{
		cmp:      cmp,
		rmBorrow: RemoveBorrowAuto,
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}

	if tree.isDesc {
		tree.cmp = infra.ReverseComparator(tree.cmp)
	}
	if tree.isStatsEnabled {
		tree.stats = newRBTreeStats(tree.statsName)
	}
	return tree, nil
}

func NewOrderedRBTree[K infra.OrderedKey](opts ...RBTreeOpt[K]) RBTree[K] {
	tree, err := NewRBTree[K](infra.OrderedComparator[K](), opts...)
	if err != nil {
		// impossible run to here
		panic(err)
	}
	return tree
}
