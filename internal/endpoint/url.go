package endpoint

import "github.com/smartbusiness/api2-go/pkg/sbapi"

// ListURL joins baseURL and template and appends the encoded list parameters.
// Nil parameters leave the URL without a query string. Path placeholders are
// left for Resolve.
func ListURL(baseURL, template string, params *sbapi.ListParameters) string {
	if params == nil {
		return baseURL + template
	}

	return baseURL + template + "?" + params.ToValues().Encode()
}

// GetURL is ListURL for get parameters.
func GetURL(baseURL, template string, params *sbapi.GetParameters) string {
	if params == nil {
		return baseURL + template
	}

	return baseURL + template + "?" + params.ToValues().Encode()
}
