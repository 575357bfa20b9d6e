package ledger

type ArgumentKind string

const (
	PureArgument   ArgumentKind = "pure"
	ObjectArgument ArgumentKind = "object"
)

// Argument is a single Move call input, either a pure value or an object reference.
type Argument struct {
	Kind     ArgumentKind `json:"kind"`
	Type     string       `json:"type,omitempty"`
	Value    any          `json:"value,omitempty"`
	ObjectID string       `json:"objectId,omitempty"`
}

// PureBytes encodes b as a vector<u8>. Values are kept as a number array
// since encoding/json would otherwise base64 a []byte.
func PureBytes(b []byte) Argument {
	values := make([]int, len(b))
	for i, v := range b {
		values[i] = int(v)
	}
	return Argument{Kind: PureArgument, Type: "vector<u8>", Value: values}
}

func PureString(s string) Argument {
	return PureBytes([]byte(s))
}

func PureU8(v uint8) Argument {
	return Argument{Kind: PureArgument, Type: "u8", Value: v}
}

func Object(id string) Argument {
	return Argument{Kind: ObjectArgument, ObjectID: id}
}

type MoveCall struct {
	Target    string     `json:"target"`
	Arguments []Argument `json:"arguments"`
}

// Transaction is a programmable transaction made of Move calls, handed to the
// wallet for signing and execution.
type Transaction struct {
	Sender string     `json:"sender,omitempty"`
	Calls  []MoveCall `json:"calls"`
}

func NewTransaction() *Transaction {
	return &Transaction{}
}

func (t *Transaction) MoveCall(target string, args ...Argument) {
	t.Calls = append(t.Calls, MoveCall{Target: target, Arguments: args})
}
