package options

// CategoryEnum is a bit set of scalar coercions the mapper is allowed to apply
// when a tree scalar does not already have the exact kind of the target type.
type CategoryEnum int

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // int, uint, float without precision loss
	CategoryUnsafeNumber                          // int, uint, float with precision loss: values are truncated to the target width
	CategoryTextNumber                            // int, uint, float <-> string: textual number representation
	CategoryNumericBool                           // int <-> bool: 0, 1 representation of boolean values
	CategoryTextualBool                           // string <-> bool: yes, no, on, off, true, false representation of boolean values
	CategoryDatetime                              // string(RFC3339Nano) <-> time.Time: textual date and time representation
	CategoryTimestamp                             // int(Unix seconds) <-> time.Time: Unix timestamp representation
	CategoryDuration                              // string(2h45m) <-> time.Duration: textual duration representation
	CategoryNanoseconds                           // int(nanoseconds) <-> time.Duration: numerical (integer) duration representation
	CategorySeconds                               // float(seconds) <-> time.Duration: numerical (floating-point) duration representation
	CategoryEnumString                            // string <-> enum: textual representation of an enum type (matched by constant name)
	CategorySafeArray                             // sequence -> array: a shorter sequence fits into an array, missing elements are zero
	CategoryUnsafeArray                           // sequence -> array: sequence does not fit into an array, extra elements are cut
	CategoryTextRune                              // string -> rune: a single character text becomes its code point

	CategoryAll  = (1 << iota) - 1 //all categories combined
	CategoryNone = 0               // no categories selected
)

// CategoryDefault is the policy a mapper starts with: every lossless or
// textual coercion, numeric truncation, but no silent array truncation.
const CategoryDefault = CategoryAll &^ CategoryUnsafeArray

// Has reports whether every category of want is allowed by c.
func (c CategoryEnum) Has(want CategoryEnum) bool {
	return c&want == want
}

// With returns c extended with extra.
func (c CategoryEnum) With(extra CategoryEnum) CategoryEnum {
	return c | extra
}

// Without returns c with the given categories removed.
func (c CategoryEnum) Without(remove CategoryEnum) CategoryEnum {
	return c &^ remove
}
