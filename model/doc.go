// Package model defines the identity types shared by termq packages.
//
//   - DocID: stable document identifier issued by an object resolver (uint32)
//   - IndexRef: (catalog, index) name pair resolved at evaluation time
package model
