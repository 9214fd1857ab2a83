package core

import (
	"fmt"
	"strings"
)

// KeyKind selects what a composition key is built from.
type KeyKind int

const (
	KeySpecies KeyKind = iota
	KeyType
	KeyMass
	KeyECN
	KeyUnsaturation
)

// Symmetry selects which positional permutations are identified.
type Symmetry int

const (
	Stereo     Symmetry = iota // (sn1, sn2, sn3) ordered
	Positional                 // sn1 and sn3 interchangeable
	Mono                       // unordered multiset
)

// Scheme is an equivalence relation on triacylglycerols.
type Scheme struct {
	Kind     KeyKind
	Symmetry Symmetry
}

var kindLetters = map[KeyKind]byte{
	KeySpecies:      'S',
	KeyType:         'T',
	KeyMass:         'M',
	KeyECN:          'N',
	KeyUnsaturation: 'U',
}

var symmetryLetters = map[Symmetry]byte{
	Stereo:     'S',
	Positional: 'P',
	Mono:       'M',
}

// Code returns the three-letter code, e.g. "SPC" for Species/Positional.
func (s Scheme) Code() string {
	return string([]byte{kindLetters[s.Kind], symmetryLetters[s.Symmetry], 'C'})
}

func (s Scheme) String() string {
	kinds := [...]string{"Species", "Type", "Mass", "ECN", "Unsaturation"}
	symmetries := [...]string{"Stereo", "Positional", "Mono"}
	return kinds[s.Kind] + "/" + symmetries[s.Symmetry]
}

// MarshalText implements encoding.TextMarshaler.
func (s Scheme) MarshalText() ([]byte, error) {
	return []byte(s.Code()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(text []byte) error {
	parsed, err := ParseScheme(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseScheme accepts a code ("SPC") or a name ("Species/Positional").
func ParseScheme(text string) (Scheme, error) {
	text = strings.TrimSpace(text)
	if len(text) == 3 && strings.ToUpper(text[2:]) == "C" {
		code := strings.ToUpper(text)
		var s Scheme
		kind, okKind := findLetter(kindLetters, code[0])
		sym, okSym := findLetter(symmetryLetters, code[1])
		if okKind && okSym {
			s.Kind, s.Symmetry = kind, sym
			return s, nil
		}
	}
	parts := strings.Split(text, "/")
	if len(parts) == 2 {
		kinds := map[string]KeyKind{
			"species": KeySpecies, "type": KeyType, "mass": KeyMass,
			"ecn": KeyECN, "unsaturation": KeyUnsaturation,
		}
		symmetries := map[string]Symmetry{"stereo": Stereo, "positional": Positional, "mono": Mono}
		kind, okKind := kinds[strings.ToLower(parts[0])]
		sym, okSym := symmetries[strings.ToLower(parts[1])]
		if okKind && okSym {
			return Scheme{Kind: kind, Symmetry: sym}, nil
		}
	}
	return Scheme{}, fmt.Errorf("unknown composition scheme %q", text)
}

func findLetter[T comparable](letters map[T]byte, c byte) (T, bool) {
	for k, v := range letters {
		if v == c {
			return k, true
		}
	}
	var zero T
	return zero, false
}
