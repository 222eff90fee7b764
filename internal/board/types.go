package board

// Wallet is one tracked address.
type Wallet struct {
	Client  string `json:"client" yaml:"client"`
	Label   string `json:"label"  yaml:"label"`
	Address string `json:"addr"   yaml:"addr"`
}

// Comment is one timestamped note attached to a wallet address.
type Comment struct {
	Timestamp string `json:"ts"   yaml:"ts"`
	Text      string `json:"text" yaml:"text"`
}

// Entry is a wallet together with its position on the board.
type Entry struct {
	Index  int    `json:"index"  yaml:"index"`
	Wallet Wallet `json:"wallet" yaml:"wallet"`
}

// State is the persisted board. Comments are keyed by wallet address so they
// survive reordering and reloading of the wallet list.
type State struct {
	Wallets     []Wallet             `json:"wallets"    yaml:"wallets"`
	Comments    map[string][]Comment `json:"comments"   yaml:"comments"`
	ActiveIndex *int                 `json:"active_idx" yaml:"active_idx"`
}

func (s State) clone() State {
	out := State{
		Wallets:  append([]Wallet(nil), s.Wallets...),
		Comments: make(map[string][]Comment, len(s.Comments)),
	}

	for addr, comments := range s.Comments {
		out.Comments[addr] = append([]Comment(nil), comments...)
	}

	if s.ActiveIndex != nil {
		index := *s.ActiveIndex
		out.ActiveIndex = &index
	}

	return out
}

// normalize drops a selection that no longer points at a wallet.
func (s *State) normalize() {
	if s.Comments == nil {
		s.Comments = make(map[string][]Comment)
	}

	if s.ActiveIndex != nil && (*s.ActiveIndex < 0 || *s.ActiveIndex >= len(s.Wallets)) {
		s.ActiveIndex = nil
	}
}
