// Package graphql exposes the account operations as a GraphQL schema.
package graphql

import (
	graphqlgo "github.com/graph-gophers/graphql-go"
)

// Schema is the SDL served at /graphql.
const Schema = `
schema {
	query: Query
	mutation: Mutation
}

type User {
	_id: ID!
	name: String!
	email: String!
	password: String!
}

type Query {
	GetUserById(userId: ID!): User!
	CurrentUser: User
}

type Mutation {
	RegisterUser(name: String!, email: String!, password: String!): User!
	LoginUser(email: String!, password: String!): User!
	LogoutUser: String!
}
`

// DefaultMaxDepth bounds query nesting.
const DefaultMaxDepth = 10

// SchemaOptions configures NewSchema.
type SchemaOptions struct {
	// DisableIntrospection is set in production.
	DisableIntrospection bool
	// ExposePasswordHash makes User.password resolve to the stored hash instead of "".
	ExposePasswordHash bool
}

// NewSchema parses Schema against a resolver over accounts.
// It panics if the resolver does not match the SDL, which is a programming error.
func NewSchema(accounts AccountUsecase, opts SchemaOptions) *graphqlgo.Schema {
	schemaOpts := []graphqlgo.SchemaOpt{
		graphqlgo.MaxDepth(DefaultMaxDepth),
	}
	if opts.DisableIntrospection {
		schemaOpts = append(schemaOpts, graphqlgo.DisableIntrospection())
	}
	return graphqlgo.MustParseSchema(Schema, NewResolver(accounts, opts.ExposePasswordHash), schemaOpts...)
}
