package catalog

import (
	"github.com/goliatone/go-ruleschema/pkg/metadata"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

const (
	dateStringPattern    = `\d{4}-[01]\d-[0-3]\dT[0-2]\d:[0-5]\d:[0-5]\d\.\d+Z?`
	numberStringPattern  = `^[-+]?[0-9]+$`
	alphaPattern         = `^[a-zA-Z]+$`
	alphanumericPattern  = `^[0-9a-zA-Z]+$`
	asciiPattern         = `^[\x00-\x7F]+$`
	fullWidthPattern     = `[^\u0020-\u007E\uFF61-\uFF9F\uFFA0-\uFFDC\uFFE8-\uFFEE0-9a-zA-Z]`
	halfWidthPattern     = `[\u0020-\u007E\uFF61-\uFF9F\uFFA0-\uFFDC\uFFE8-\uFFEE0-9a-zA-Z]`
	hexColorPattern      = `^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`
	hexadecimalPattern   = `^[0-9a-fA-F]+$`
	mongoIDPattern       = `^[0-9a-fA-F]{24}$`
	multibytePattern     = `[^\x00-\x7F]`
	surrogatePairPattern = `[\uD800-\uDBFF][\uDC00-\uDFFF]`
	militaryTimePattern  = `^([01]\d|2[0-3]):?([0-5]\d)$`
)

// Builtin returns the converter for a built-in kind. The switch is exhaustive
// over metadata.Kinds(); unknown kinds report false.
func Builtin(kind metadata.Kind) (Converter, bool) {
	switch kind {
	case metadata.KindCustomValidation:
		return Func(convertCustom), true
	case metadata.KindNestedValidation:
		return Func(convertNested), true
	case metadata.KindConditionalValidation, metadata.KindIsDefined:
		return Static{}, true

	case metadata.KindEquals:
		return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
			return equalsSchema(rule.Constraint(0))
		}), true
	case metadata.KindNotEquals:
		return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
			if inner := equalsSchema(rule.Constraint(0)); inner != nil {
				return schema.Fragment{"not": inner}
			}
			return nil
		}), true
	case metadata.KindIsEmpty:
		return Static{
			"anyOf": []any{
				schema.Fragment{schema.KeyType: schema.TypeString, schema.KeyEnum: []any{""}},
				schema.Fragment{
					"not": schema.Fragment{
						"anyOf": []any{
							schema.OfType(schema.TypeString),
							schema.OfType(schema.TypeNumber),
							schema.OfType(schema.TypeBoolean),
							schema.OfType(schema.TypeInteger),
							schema.OfType(schema.TypeArray),
							schema.OfType(schema.TypeObject),
						},
					},
					"nullable": true,
				},
			},
		}, true
	case metadata.KindIsNotEmpty:
		return Static{"minLength": 1, schema.KeyType: schema.TypeString}, true
	case metadata.KindIsIn:
		return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
			return membershipSchema(rule.Constraint(0))
		}), true
	case metadata.KindIsNotIn:
		return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
			if inner := membershipSchema(rule.Constraint(0)); inner != nil {
				return schema.Fragment{"not": inner}
			}
			return nil
		}), true

	case metadata.KindIsBoolean:
		return Static{schema.KeyType: schema.TypeBoolean}, true
	case metadata.KindIsDate, metadata.KindIsISO8601:
		return Func(func(metadata.Rule, metadata.Options) schema.Fragment {
			return schema.Fragment{"oneOf": dateAlternatives()}
		}), true
	case metadata.KindIsNumber:
		return Static{schema.KeyType: schema.TypeNumber}, true
	case metadata.KindIsString, metadata.KindIsByteLength, metadata.KindIsVariableWidth,
		metadata.KindIsLowercase, metadata.KindIsUppercase:
		return Static{schema.KeyType: schema.TypeString}, true
	case metadata.KindIsDateString:
		return Static(stringPattern(dateStringPattern)), true
	case metadata.KindIsArray:
		return Func(func(metadata.Rule, metadata.Options) schema.Fragment {
			return anyItems(nil)
		}), true
	case metadata.KindIsInt:
		return Static{schema.KeyType: schema.TypeInteger}, true
	case metadata.KindIsEnum:
		return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
			return schema.Fragment{schema.KeyEnum: enumKeys(rule.Constraint(0)), schema.KeyType: schema.TypeString}
		}), true

	case metadata.KindIsDivisibleBy:
		return numberKeyword("multipleOf"), true
	case metadata.KindIsPositive:
		return Static{"exclusiveMinimum": true, "minimum": 0, schema.KeyType: schema.TypeNumber}, true
	case metadata.KindIsNegative:
		return Static{"exclusiveMaximum": true, "maximum": 0, schema.KeyType: schema.TypeNumber}, true
	case metadata.KindMin:
		return numberKeyword("minimum"), true
	case metadata.KindMax:
		return numberKeyword("maximum"), true

	case metadata.KindMinDate:
		return dateBound("After "), true
	case metadata.KindMaxDate:
		return dateBound("Before "), true

	case metadata.KindIsBooleanString:
		return Static{schema.KeyEnum: []any{"true", "false"}, schema.KeyType: schema.TypeString}, true
	case metadata.KindIsNumberString:
		return Static(stringPattern(numberStringPattern)), true
	case metadata.KindContains:
		return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
			return schema.Fragment{"pattern": rule.Constraint(0), schema.KeyType: schema.TypeString}
		}), true
	case metadata.KindNotContains:
		return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
			return schema.Fragment{
				"not":          schema.Fragment{"pattern": rule.Constraint(0)},
				schema.KeyType: schema.TypeString,
			}
		}), true
	case metadata.KindIsAlpha:
		return Static(stringPattern(alphaPattern)), true
	case metadata.KindIsAlphanumeric:
		return Static(stringPattern(alphanumericPattern)), true
	case metadata.KindIsASCII:
		return Static(stringPattern(asciiPattern)), true
	case metadata.KindIsBase64:
		return Static(stringFormat("base64")), true
	case metadata.KindIsCreditCard:
		return Static(stringFormat("credit-card")), true
	case metadata.KindIsCurrency:
		return Static(stringFormat("currency")), true
	case metadata.KindIsEmail:
		return Static(stringFormat("email")), true
	case metadata.KindIsFQDN:
		return Static(stringFormat("hostname")), true
	case metadata.KindIsFullWidth:
		return Static(stringPattern(fullWidthPattern)), true
	case metadata.KindIsHalfWidth:
		return Static(stringPattern(halfWidthPattern)), true
	case metadata.KindIsHexColor:
		return Static(stringPattern(hexColorPattern)), true
	case metadata.KindIsHexadecimal:
		return Static(stringPattern(hexadecimalPattern)), true
	case metadata.KindIsIP:
		return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
			if isIPv6(rule.Constraint(0)) {
				return stringFormat("ipv6")
			}
			return stringFormat("ipv4")
		}), true
	case metadata.KindIsISBN:
		return Static(stringFormat("isbn")), true
	case metadata.KindIsISIN:
		return Static(stringFormat("isin")), true
	case metadata.KindIsJSON:
		return Static(stringFormat("json")), true
	case metadata.KindIsMobilePhone:
		return Static(stringFormat("mobile-phone")), true
	case metadata.KindIsMongoID:
		return Static(stringPattern(mongoIDPattern)), true
	case metadata.KindIsMultibyte:
		return Static(stringPattern(multibytePattern)), true
	case metadata.KindIsSurrogatePair:
		return Static(stringPattern(surrogatePairPattern)), true
	case metadata.KindIsURL:
		return Static(stringFormat("url")), true
	case metadata.KindIsUUID:
		return Static(stringFormat("uuid")), true
	case metadata.KindLength:
		return Func(convertLength), true
	case metadata.KindMinLength:
		return stringKeyword("minLength"), true
	case metadata.KindMaxLength:
		return stringKeyword("maxLength"), true
	case metadata.KindMatches:
		return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
			out := schema.OfType(schema.TypeString)
			if source, ok := patternSource(rule.Constraint(0)); ok {
				out["pattern"] = source
			}
			return out
		}), true
	case metadata.KindIsMilitaryTime:
		return Static(stringPattern(militaryTimePattern)), true

	case metadata.KindArrayContains:
		return Func(convertArrayContains), true
	case metadata.KindArrayNotContains:
		return Func(convertArrayNotContains), true
	case metadata.KindArrayNotEmpty:
		return Func(func(metadata.Rule, metadata.Options) schema.Fragment {
			return anyItems(schema.Fragment{"minItems": 1})
		}), true
	case metadata.KindArrayMinSize:
		return arrayKeyword("minItems"), true
	case metadata.KindArrayMaxSize:
		return arrayKeyword("maxItems"), true
	case metadata.KindArrayUnique:
		return Func(func(metadata.Rule, metadata.Options) schema.Fragment {
			return anyItems(schema.Fragment{"uniqueItems": true})
		}), true
	}
	return nil, false
}

func convertCustom(rule metadata.Rule, opts metadata.Options) schema.Fragment {
	target, ok := rule.DeclaringType()
	if !ok {
		return nil
	}
	typ, _ := opts.PropertyType(target, rule.Property)
	return targetSchema(typ, opts)
}

func convertNested(rule metadata.Rule, opts metadata.Options) schema.Fragment {
	target, ok := rule.DeclaringType()
	if !ok {
		return nil
	}
	if typ, ok := opts.ElementType(target, rule.Property); ok {
		return targetSchema(typ, opts)
	}
	typ, _ := opts.PropertyType(target, rule.Property)
	return targetSchema(typ, opts)
}

func equalsSchema(value any) schema.Fragment {
	base := constraintSchema(value)
	if base == nil {
		return nil
	}
	return withEnum(base, []any{value})
}

// membershipSchema builds {type, enum} when every candidate shares the type
// of the first one.
func membershipSchema(value any) schema.Fragment {
	candidates, ok := listValues(value)
	if !ok || len(candidates) == 0 {
		return nil
	}
	head := constraintSchema(candidates[0])
	if head == nil {
		return nil
	}
	for _, candidate := range candidates[1:] {
		if constraintSchema(candidate).Type() != head.Type() {
			return nil
		}
	}
	return withEnum(head, candidates)
}

func convertLength(rule metadata.Rule, _ metadata.Options) schema.Fragment {
	out := schema.Fragment{"minLength": rule.Constraint(0), schema.KeyType: schema.TypeString}
	if maxLength := rule.Constraint(1); maxLength != nil {
		out["maxLength"] = maxLength
	}
	return out
}

// primitiveCandidates returns the candidate list and its per-item schemas when
// the list is non-empty and every item is primitive.
func primitiveCandidates(value any) ([]any, []schema.Fragment, bool) {
	candidates, ok := listValues(value)
	if !ok || len(candidates) == 0 {
		return nil, nil, false
	}
	schemas := make([]schema.Fragment, len(candidates))
	for idx, candidate := range candidates {
		schemas[idx] = constraintSchema(candidate)
		if schemas[idx] == nil {
			return nil, nil, false
		}
	}
	return candidates, schemas, true
}

func convertArrayContains(rule metadata.Rule, _ metadata.Options) schema.Fragment {
	candidates, schemas, ok := primitiveCandidates(rule.Constraint(0))
	if !ok {
		return anyItems(nil)
	}
	alternatives := make([]any, len(schemas))
	for idx, base := range schemas {
		alternatives[idx] = schema.Fragment{
			schema.KeyItems: schema.Fragment{"not": withEnum(base, []any{candidates[idx]})},
		}
	}
	return schema.Fragment{
		"not":          schema.Fragment{"anyOf": alternatives},
		schema.KeyType: schema.TypeArray,
	}
}

func convertArrayNotContains(rule metadata.Rule, _ metadata.Options) schema.Fragment {
	candidates, schemas, ok := primitiveCandidates(rule.Constraint(0))
	if !ok {
		return anyItems(nil)
	}
	alternatives := make([]any, len(schemas))
	for idx, base := range schemas {
		alternatives[idx] = withEnum(base, []any{candidates[idx]})
	}
	return schema.Fragment{
		schema.KeyItems: schema.Fragment{"not": schema.Fragment{"anyOf": alternatives}},
		schema.KeyType:  schema.TypeArray,
	}
}

func numberKeyword(keyword string) Converter {
	return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
		return schema.Fragment{keyword: rule.Constraint(0), schema.KeyType: schema.TypeNumber}
	})
}

func stringKeyword(keyword string) Converter {
	return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
		return schema.Fragment{keyword: rule.Constraint(0), schema.KeyType: schema.TypeString}
	})
}

func arrayKeyword(keyword string) Converter {
	return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
		return anyItems(schema.Fragment{keyword: rule.Constraint(0)})
	})
}

func dateBound(prefix string) Converter {
	return Func(func(rule metadata.Rule, _ metadata.Options) schema.Fragment {
		out := schema.Fragment{"oneOf": dateAlternatives()}
		if serialised, ok := dateJSON(rule.Constraint(0)); ok {
			out[schema.KeyDescription] = prefix + serialised
		}
		return out
	})
}
