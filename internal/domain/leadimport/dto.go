package leadimport

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const formMappingPrefix = "mapping_"

// MappingRequest is the JSON body of the mapping step.
type MappingRequest struct {
	Token   string  `json:"token"`
	Mapping Mapping `json:"mapping"`
}

// mappingFromForm reads token and mapping_<field> values from a form post.
func mappingFromForm(c *gin.Context) MappingRequest {
	req := MappingRequest{
		Token:   c.PostForm("token"),
		Mapping: make(Mapping, len(allFields)),
	}
	for _, f := range allFields {
		req.Mapping[f] = strings.TrimSpace(c.PostForm(formMappingPrefix + f))
	}
	return req
}

type RowValidationDetails struct {
	InvalidRows int        `json:"invalid_rows"`
	TotalRows   int        `json:"total_rows"`
	Rows        []RowError `json:"rows"`
	Truncated   bool       `json:"truncated,omitempty"`
}

type MappingIncompleteDetails struct {
	MissingFields []string `json:"missing_fields"`
	Token         string   `json:"token"`
	Redirect      string   `json:"redirect"`
}

type CommitResponse struct {
	ImportID string `json:"import_id"`
	Imported int    `json:"imported"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}
