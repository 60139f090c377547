package domain

import "strconv"

// TokenID identifies a minted token. Identifiers are assigned
// sequentially starting at 0 and are never reused, so the id doubles as
// the mint order.
type TokenID uint64

// ParseTokenID parses a decimal token id as it appears in URLs and
// locators.
func ParseTokenID(s string) (TokenID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return TokenID(n), nil
}

// String renders the id in its decimal text form, the same form the
// token locator concatenates.
func (id TokenID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// SkillID identifies a skill definition by its position in the append-only
// skill sequence. The position is the identifier: definitions are never
// removed or reordered.
type SkillID uint64

// ParseSkillID parses a decimal skill id.
func ParseSkillID(s string) (SkillID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return SkillID(n), nil
}

func (id SkillID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
