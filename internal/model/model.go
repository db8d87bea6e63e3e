// Package model holds the in-memory documentation model produced by the
// grammar parser: classes, members, arguments and their types, indexed for
// lookup once construction is complete.
package model

// MemberKind distinguishes the member shapes a class can carry. Arguments
// reuse the Member shape (a named, typed parameter with a required flag).
type MemberKind string

const (
	KindEvent    MemberKind = "event"
	KindMethod   MemberKind = "method"
	KindProperty MemberKind = "property"
	KindArgument MemberKind = "argument"
)

// Documentation is the root container. It is mutated only while the grammar
// passes run; after Index it is treated as read-only.
type Documentation struct {
	Classes []*Class `json:"classes"`

	classIndex map[string]*Class
}

func New() *Documentation {
	return &Documentation{
		classIndex: make(map[string]*Class),
	}
}

// AddClass appends a class in declaration order. It reports whether a class
// with the same name was already registered.
func (d *Documentation) AddClass(c *Class) bool {
	if _, exists := d.classIndex[c.Name]; exists {
		return false
	}

	d.Classes = append(d.Classes, c)
	d.classIndex[c.Name] = c

	return true
}

// Class returns the class with the given name, or nil.
func (d *Documentation) Class(name string) *Class {
	return d.classIndex[name]
}

// Index builds the member lookup tables. Call once after all passes have
// completed; the model must not be mutated afterwards.
func (d *Documentation) Index() {
	for _, class := range d.Classes {
		class.index()
	}
}

type Class struct {
	Name     string    `json:"name"`
	Extends  string    `json:"extends,omitempty"` // base class referenced by name, not owned
	Members  []*Member `json:"members,omitempty"`
	Metainfo Metainfo  `json:"metainfo"`
	Comments []string  `json:"comments,omitempty"`

	memberIndex map[string]*Member
}

// Member returns the member with the given kind and name, or nil. Valid only
// after Documentation.Index.
func (c *Class) Member(kind MemberKind, name string) *Member {
	return c.memberIndex[memberKey(kind, name)]
}

// FindMember scans the member list directly; used during construction before
// the index exists.
func (c *Class) FindMember(kind MemberKind, name string) *Member {
	for _, member := range c.Members {
		if member.Kind == kind && member.Name == name {
			return member
		}
	}
	return nil
}

func (c *Class) index() {
	c.memberIndex = make(map[string]*Member, len(c.Members))
	for _, member := range c.Members {
		key := memberKey(member.Kind, member.Name)
		if _, exists := c.memberIndex[key]; !exists {
			c.memberIndex[key] = member
		}
	}
}

func memberKey(kind MemberKind, name string) string {
	return string(kind) + ":" + name
}

type Member struct {
	Kind     MemberKind `json:"kind"`
	Name     string     `json:"name"`
	Type     *Type      `json:"type,omitempty"`
	Args     []*Member  `json:"args,omitempty"` // methods only, in declaration order
	Async    bool       `json:"async,omitempty"`
	Required bool       `json:"required"`
	Metainfo Metainfo   `json:"metainfo"`
	Comments []string   `json:"comments,omitempty"`

	// Synthetic marks containers the parser creates itself, like the
	// aggregate options argument, as opposed to declared entities.
	Synthetic bool `json:"-"`
}

// Argument returns the argument with the given name, or nil.
func (m *Member) Argument(name string) *Member {
	for _, arg := range m.Args {
		if arg.Name == name {
			return arg
		}
	}
	return nil
}

// Type is a value object: a type name plus nested property members for
// object-shaped types. It is never mutated after construction; language
// overrides replace the whole Type on a member instead.
type Type struct {
	Name       string    `json:"name"`
	Properties []*Member `json:"properties,omitempty"`
}

// Property returns the nested property with the given name, or nil.
func (t *Type) Property(name string) *Member {
	for _, prop := range t.Properties {
		if prop.Name == name {
			return prop
		}
	}
	return nil
}

// Metainfo carries the since-version, experimental flag and
// language-applicability data attached to every class, member and argument.
type Metainfo struct {
	Since        string `json:"since"`
	Experimental bool   `json:"experimental,omitempty"`
	Langs        Langs  `json:"langs,omitzero"`
}

// Langs records language applicability. An empty Only list means the entity
// applies to all languages.
type Langs struct {
	Only      []string           `json:"only,omitempty"`
	Aliases   map[string]string  `json:"aliases,omitempty"`
	Types     map[string]*Type   `json:"types,omitempty"`     // per-language type overrides
	Overrides map[string]*Member `json:"overrides,omitempty"` // per-language full-declaration overrides
}

// Supports reports whether the entity applies to the given language.
func (l Langs) Supports(lang string) bool {
	if len(l.Only) == 0 {
		return true
	}
	for _, only := range l.Only {
		if only == lang {
			return true
		}
	}
	return false
}

// TypeFor returns the language-specific type override if one is recorded,
// falling back to the given base type.
func (l Langs) TypeFor(lang string, base *Type) *Type {
	if override, ok := l.Types[lang]; ok {
		return override
	}
	return base
}

// AliasFor returns the per-language name alias, falling back to the given
// base name.
func (l Langs) AliasFor(lang, base string) string {
	if alias, ok := l.Aliases[lang]; ok {
		return alias
	}
	return base
}
