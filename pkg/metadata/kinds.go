package metadata

import "sort"

// Kind names a single validation constraint category.
type Kind string

// Built-in rule kinds. The vocabulary is closed: the catalog package converts
// every one of them, and anything else is reported as unrecognised unless an
// additional converter is registered for it.
const (
	KindCustomValidation      Kind = "custom-validation"
	KindNestedValidation      Kind = "nested-validation"
	KindConditionalValidation Kind = "conditional-validation"
	KindIsDefined             Kind = "is-defined"

	KindEquals     Kind = "equals"
	KindNotEquals  Kind = "not-equals"
	KindIsEmpty    Kind = "is-empty"
	KindIsNotEmpty Kind = "is-not-empty"
	KindIsIn       Kind = "is-in"
	KindIsNotIn    Kind = "is-not-in"

	KindIsBoolean    Kind = "is-boolean"
	KindIsDate       Kind = "is-date"
	KindIsNumber     Kind = "is-number"
	KindIsString     Kind = "is-string"
	KindIsDateString Kind = "is-date-string"
	KindIsArray      Kind = "is-array"
	KindIsInt        Kind = "is-int"
	KindIsEnum       Kind = "is-enum"

	KindIsDivisibleBy Kind = "is-divisible-by"
	KindIsPositive    Kind = "is-positive"
	KindIsNegative    Kind = "is-negative"
	KindMin           Kind = "min"
	KindMax           Kind = "max"

	KindMinDate Kind = "min-date"
	KindMaxDate Kind = "max-date"

	KindIsBooleanString Kind = "is-boolean-string"
	KindIsNumberString  Kind = "is-number-string"
	KindContains        Kind = "contains"
	KindNotContains     Kind = "not-contains"
	KindIsAlpha         Kind = "is-alpha"
	KindIsAlphanumeric  Kind = "is-alphanumeric"
	KindIsASCII         Kind = "is-ascii"
	KindIsBase64        Kind = "is-base64"
	KindIsByteLength    Kind = "is-byte-length"
	KindIsCreditCard    Kind = "is-credit-card"
	KindIsCurrency      Kind = "is-currency"
	KindIsEmail         Kind = "is-email"
	KindIsFQDN          Kind = "is-fqdn"
	KindIsFullWidth     Kind = "is-full-width"
	KindIsHalfWidth     Kind = "is-half-width"
	KindIsVariableWidth Kind = "is-variable-width"
	KindIsHexColor      Kind = "is-hex-color"
	KindIsHexadecimal   Kind = "is-hexadecimal"
	KindIsIP            Kind = "is-ip"
	KindIsISBN          Kind = "is-isbn"
	KindIsISIN          Kind = "is-isin"
	KindIsISO8601       Kind = "is-iso8601"
	KindIsJSON          Kind = "is-json"
	KindIsLowercase     Kind = "is-lowercase"
	KindIsMobilePhone   Kind = "is-mobile-phone"
	KindIsMongoID       Kind = "is-mongo-id"
	KindIsMultibyte     Kind = "is-multibyte"
	KindIsSurrogatePair Kind = "is-surrogate-pair"
	KindIsURL           Kind = "is-url"
	KindIsUUID          Kind = "is-uuid"
	KindLength          Kind = "length"
	KindIsUppercase     Kind = "is-uppercase"
	KindMinLength       Kind = "min-length"
	KindMaxLength       Kind = "max-length"
	KindMatches         Kind = "matches"
	KindIsMilitaryTime  Kind = "is-military-time"

	KindArrayContains    Kind = "array-contains"
	KindArrayNotContains Kind = "array-not-contains"
	KindArrayNotEmpty    Kind = "array-not-empty"
	KindArrayMinSize     Kind = "array-min-size"
	KindArrayMaxSize     Kind = "array-max-size"
	KindArrayUnique      Kind = "array-unique"
)

var builtinKinds = []Kind{
	KindCustomValidation, KindNestedValidation, KindConditionalValidation, KindIsDefined,
	KindEquals, KindNotEquals, KindIsEmpty, KindIsNotEmpty, KindIsIn, KindIsNotIn,
	KindIsBoolean, KindIsDate, KindIsNumber, KindIsString, KindIsDateString, KindIsArray,
	KindIsInt, KindIsEnum, KindIsDivisibleBy, KindIsPositive, KindIsNegative, KindMin, KindMax,
	KindMinDate, KindMaxDate, KindIsBooleanString, KindIsNumberString, KindContains,
	KindNotContains, KindIsAlpha, KindIsAlphanumeric, KindIsASCII, KindIsBase64,
	KindIsByteLength, KindIsCreditCard, KindIsCurrency, KindIsEmail, KindIsFQDN,
	KindIsFullWidth, KindIsHalfWidth, KindIsVariableWidth, KindIsHexColor, KindIsHexadecimal,
	KindIsIP, KindIsISBN, KindIsISIN, KindIsISO8601, KindIsJSON, KindIsLowercase,
	KindIsMobilePhone, KindIsMongoID, KindIsMultibyte, KindIsSurrogatePair, KindIsURL,
	KindIsUUID, KindLength, KindIsUppercase, KindMinLength, KindMaxLength, KindMatches,
	KindIsMilitaryTime, KindArrayContains, KindArrayNotContains, KindArrayNotEmpty,
	KindArrayMinSize, KindArrayMaxSize, KindArrayUnique,
}

var builtinKindSet = func() map[Kind]struct{} {
	set := make(map[Kind]struct{}, len(builtinKinds))
	for _, kind := range builtinKinds {
		set[kind] = struct{}{}
	}
	return set
}()

// Kinds returns the built-in vocabulary sorted by name.
func Kinds() []Kind {
	out := append([]Kind(nil), builtinKinds...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsBuiltin reports whether kind belongs to the built-in vocabulary.
func (k Kind) IsBuiltin() bool {
	_, ok := builtinKindSet[k]
	return ok
}

// IsOptionalMarker reports whether the kind marks a property as optional
// (conditional validation or is-empty).
func (k Kind) IsOptionalMarker() bool {
	return k == KindConditionalValidation || k == KindIsEmpty
}

// IsPresenceMarker reports whether the kind requires the property to be
// present.
func (k Kind) IsPresenceMarker() bool {
	return k == KindIsDefined
}
