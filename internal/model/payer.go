package model

import "strings"

// MeLabel is the wire value of the account owner as a payer.
const MeLabel = "me"

// Payer is who paid for an acquired item: the account owner (the zero
// value) or a roommate identified by name.
type Payer struct {
	roommate string
}

// PayerMe is the account owner. Items with no recorded payer belong to it.
var PayerMe = Payer{}

// Roommate returns the payer for a roommate label. Blank names and "me"
// resolve to PayerMe.
func Roommate(name string) Payer {
	name = strings.TrimSpace(name)
	if name == "" || name == MeLabel {
		return PayerMe
	}
	return Payer{roommate: name}
}

func (p Payer) IsMe() bool { return p.roommate == "" }

// Name returns "me" or the roommate label.
func (p Payer) Name() string {
	if p.IsMe() {
		return MeLabel
	}
	return p.roommate
}

func (p Payer) String() string { return p.Name() }

func (p Payer) MarshalText() ([]byte, error) {
	return []byte(p.Name()), nil
}

func (p *Payer) UnmarshalText(b []byte) error {
	*p = Roommate(string(b))
	return nil
}
