package arcir

// VarID names an SSA-like variable inside one function. IDs are dense
// indices into Func.VarTypes.
type VarID int32

// BlockID names a basic block. IDs are dense indices into Func.Blocks.
type BlockID int32

const (
	NoVarID   VarID   = -1
	NoBlockID BlockID = -1
)

func (v VarID) IsValid() bool { return v >= 0 }

func (b BlockID) IsValid() bool { return b >= 0 }
