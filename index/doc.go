// Package index defines the capability contract between query evaluation and
// the indexes it runs against.
//
// An index advertises what it can answer through Capabilities. The evaluator
// dispatches each term on those declared capabilities and never probes for
// methods at runtime:
//
//   - CapField: Equal, In and Between over single-valued fields (FieldQuerier)
//   - CapSet: AnyOf, AllOf and SetBetween over multi-valued fields (SetQuerier)
//   - CapExtent: ExtentAny and ExtentNone (ExtentQuerier)
//   - CapText: free-text matching (TextQuerier)
//   - CapSort: ordering ids by indexed value (Sorter)
//
// Reference implementations live in the field, set and text subpackages.
package index
