package llm

// Response is either Raw or Structured. Consumers type-switch on it.
type Response interface {
	// Content is the text the model returned, before any decoding.
	Content() string
	isResponse()
}

// Raw is a plain text answer.
type Raw struct {
	Text string
}

// Structured is an answer decoded and validated against a Schema. Value holds
// a pointer to the schema's Go type.
type Structured struct {
	Text  string
	Value any
}

func (r Raw) Content() string        { return r.Text }
func (s Structured) Content() string { return s.Text }

func (Raw) isResponse()        {}
func (Structured) isResponse() {}

// NewResponse wraps model output, decoding it when schema is non-nil.
func NewResponse(text string, schema *Schema) (Response, error) {
	if schema == nil {
		return Raw{Text: text}, nil
	}
	v, err := schema.Decode(text)
	if err != nil {
		return nil, err
	}
	return Structured{Text: stripFences(text), Value: v}, nil
}

// As extracts the decoded value of a Structured response as *T.
func As[T any](r Response) (*T, bool) {
	s, ok := r.(Structured)
	if !ok {
		return nil, false
	}
	v, ok := s.Value.(*T)
	return v, ok
}
