// Package todo holds the domain model: users owning ordered task lists,
// the credentials each type can be searched by, and small read-only
// use cases composed on the storage contract.
package todo
