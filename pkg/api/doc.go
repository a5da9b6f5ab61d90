// Package api defines the domain types of the listora service: the product
// brief collected from the user, the generated marketplace listings, the
// draft record that carries a wizard session from form input to results,
// and the error taxonomy shared across transport, engine, and AI client.
package api
