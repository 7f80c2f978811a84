package match

// Match is a model-asserted relevance claim about one entity id.
type Match struct {
	id     string
	score  int
	reason string
}

// New creates a match. Score is expected to be clamped by the parser.
func New(id string, score int, reason string) Match {
	return Match{id: id, score: score, reason: reason}
}

// ID returns the opaque entity identifier the model referenced.
func (m *Match) ID() string { return m.id }

// Score returns the relevance score in [0,100].
func (m *Match) Score() int { return m.score }

// Reason returns the model's free-text justification.
func (m *Match) Reason() string { return m.reason }

// ResultSet is the structured content extracted from one model reply.
type ResultSet struct {
	interpretation string
	deals          []Match
	contacts       []Match
	events         []Match
}

// NewResultSet creates a parsed result set.
func NewResultSet(interpretation string, deals, contacts, events []Match) ResultSet {
	return ResultSet{
		interpretation: interpretation,
		deals:          deals,
		contacts:       contacts,
		events:         events,
	}
}

// Interpretation returns the model's reading of the query, may be empty.
func (r *ResultSet) Interpretation() string { return r.interpretation }

// Deals returns deal matches in model emission order.
func (r *ResultSet) Deals() []Match { return r.deals }

// Contacts returns contact matches in model emission order.
func (r *ResultSet) Contacts() []Match { return r.contacts }

// Events returns event matches in model emission order.
func (r *ResultSet) Events() []Match { return r.events }
