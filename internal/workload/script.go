package workload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/safeopen"
	"gopkg.in/yaml.v3"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
)

var (
	ErrWorkloadUnknownOp     = errors.New("[workload] unknown op")
	ErrWorkloadMissingValues = errors.New("[workload] op requires values")
	ErrWorkloadUnknownBorrow = errors.New("[workload] unknown remove borrow policy")
	ErrWorkloadEmptyScript   = errors.New("[workload] script has no ops")
)

type OpType string

const (
	OpAdd        OpType = "add"
	OpRemove     OpType = "remove"
	OpContains   OpType = "contains"
	OpMin        OpType = "min"
	OpMax        OpType = "max"
	OpRemoveMin  OpType = "remove_min"
	OpRemoveMax  OpType = "remove_max"
	OpInOrder    OpType = "inorder"
	OpPreOrder   OpType = "preorder"
	OpPostOrder  OpType = "postorder"
	OpLevelOrder OpType = "levelorder"
	OpClear      OpType = "clear"
	OpValidate   OpType = "validate"
)

func (typ OpType) requiresValues() bool {
	switch typ {
	case OpAdd, OpRemove, OpContains:
		return true
	default:
	}
	return false
}

func (typ OpType) isMutation() bool {
	switch typ {
	case OpAdd, OpRemove, OpRemoveMin, OpRemoveMax, OpClear:
		return true
	default:
	}
	return false
}

func (typ OpType) valid() bool {
	switch typ {
	case OpAdd, OpRemove, OpContains, OpMin, OpMax, OpRemoveMin, OpRemoveMax,
		OpInOrder, OpPreOrder, OpPostOrder, OpLevelOrder, OpClear, OpValidate:
		return true
	default:
	}
	return false
}

type Op struct {
	Op     OpType  `json:"op" yaml:"op"`
	Values []int64 `json:"values,omitempty" yaml:"values,omitempty"`
}

// Script is a sequence of ops replayed against one int64 tree.
type Script struct {
	Name         string `json:"name" yaml:"name"`
	Duplicates   bool   `json:"duplicates" yaml:"duplicates"`
	Desc         bool   `json:"desc" yaml:"desc"`
	RemoveBorrow string `json:"remove_borrow,omitempty" yaml:"remove_borrow,omitempty"`
	Stats        bool   `json:"stats" yaml:"stats"`
	Ops          []Op   `json:"ops" yaml:"ops"`
}

func ParseRemoveBorrow(policy string) (tree.RBRemoveBorrow, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", "auto":
		return tree.RemoveBorrowAuto, nil
	case "succ":
		return tree.RemoveBorrowSucc, nil
	case "pred":
		return tree.RemoveBorrowPred, nil
	default:
	}
	return tree.RemoveBorrowAuto, infra.WrapErrorStackWithMessage(ErrWorkloadUnknownBorrow, policy)
}

func (s *Script) Validate() error {
	if len(s.Ops) == 0 {
		return infra.WrapErrorStack(ErrWorkloadEmptyScript)
	}
	if _, err := ParseRemoveBorrow(s.RemoveBorrow); err != nil {
		return err
	}
	for i, op := range s.Ops {
		if !op.Op.valid() {
			return infra.WrapErrorStackWithMessage(ErrWorkloadUnknownOp, fmt.Sprintf("ops[%d] %q", i, op.Op))
		}
		if op.Op.requiresValues() && len(op.Values) == 0 {
			return infra.WrapErrorStackWithMessage(ErrWorkloadMissingValues, fmt.Sprintf("ops[%d] %q", i, op.Op))
		}
	}
	return nil
}

func (s *Script) treeOptions() []tree.RBTreeOpt[int64] {
	borrow, _ := ParseRemoveBorrow(s.RemoveBorrow)
	opts := []tree.RBTreeOpt[int64]{tree.WithRBTreeRemoveBorrow[int64](borrow)}
	if s.Duplicates {
		opts = append(opts, tree.WithRBTreeDuplicates[int64]())
	}
	if s.Desc {
		opts = append(opts, tree.WithRBTreeDesc[int64]())
	}
	if s.Stats {
		opts = append(opts, tree.WithRBTreeStats[int64](s.Name))
	}
	return opts
}

// Parse rejects the unknown fields.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	script := &Script{}
	if err := dec.Decode(script); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[workload] decode script")
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return script, nil
}

func ParseBytes(data []byte) (*Script, error) {
	return Parse(bytes.NewReader(data))
}

// Load opens the file beneath dir only, the paths escaping dir
// are rejected.
func Load(dir, file string) (*Script, error) {
	f, err := safeopen.OpenBeneath(dir, file)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[workload] open script")
	}
	defer func() {
		_ = f.Close()
	}()
	return Parse(f)
}
