// internal/server/handlers.go
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"menu-classifier/internal/common/errors"
	"menu-classifier/internal/models"
)

func (s *Server) handleClassify(c *gin.Context) {
	var req models.ClassifyRequest
	if err := bindValidated(c, classifySchema, &req); err != nil {
		s.renderError(c, err)
		return
	}

	outcome, err := s.service.Classify(c.Request.Context(), req)
	if err != nil {
		s.renderError(c, err)
		return
	}

	if outcome.NeedsReview != nil {
		// 202: the request is parked until a reviewer finishes it.
		c.JSON(http.StatusAccepted, outcome.NeedsReview)
		return
	}
	c.JSON(http.StatusOK, outcome.Resolved)
}

func (s *Server) handleReview(c *gin.Context) {
	var req models.ReviewRequest
	if err := bindValidated(c, reviewSchema, &req); err != nil {
		s.renderError(c, err)
		return
	}

	resp, err := s.service.Correct(c.Request.Context(), req)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// bindValidated checks the raw payload against a JSON schema before
// unmarshalling, so shape errors surface as InvalidInput with the
// schema's message rather than as a decode failure.
func bindValidated(c *gin.Context, schema string, out interface{}) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("validation error: %v", err))
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.NewInvalidInputError(fmt.Sprintf("payload validation failed: %v", errs))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	return nil
}

func (s *Server) renderError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
	}
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    string(code),
			"message": err.Error(),
		},
	})
}
