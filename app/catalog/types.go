package catalog

import (
	"time"
)

// Product is one active catalog entry as returned by the Admin API.
type Product struct {
	Title           string
	DescriptionHTML string // optional
	Handle          string // URL slug, used to build the product permalink
	UpdatedAt       time.Time
	Images          []Image
	Variants        []Variant
	ProductType     string // optional
	Tags            string // optional, comma separated
}

type Image struct {
	URL string
}

type Variant struct {
	Price string // decimal string as sent by upstream, e.g. "149.90"
}

// GraphQL wire types

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type productsResponse struct {
	Data *struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type productNode struct {
	Title           string    `json:"title"`
	DescriptionHTML string    `json:"descriptionHtml"`
	Handle          string    `json:"handle"`
	UpdatedAt       time.Time `json:"updatedAt"`
	ProductType     string    `json:"productType"`
	Tags            []string  `json:"tags"`
	Images          struct {
		Edges []struct {
			Node struct {
				URL string `json:"url"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node struct {
				Price string `json:"price"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type countResponse struct {
	Data *struct {
		ProductsCount struct {
			Count int `json:"count"`
		} `json:"productsCount"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}
