package helpers

import (
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
)

const siteTitle = "Natours"

// GetBaseData fills the values every page template expects on top of the page's own data.
func GetBaseData(r *http.Request, pageSpecificData map[string]interface{}) map[string]interface{} {
	if pageSpecificData == nil {
		pageSpecificData = make(map[string]interface{})
	}

	if title, ok := pageSpecificData["Title"].(string); ok && title != "" {
		pageSpecificData["Title"] = siteTitle + " | " + title
	} else {
		pageSpecificData["Title"] = siteTitle
	}

	pageSpecificData["User"] = nil
	pageSpecificData["IsLoggedIn"] = false
	if user := CurrentUser(r); user != nil {
		pageSpecificData["User"] = user
		pageSpecificData["IsLoggedIn"] = true
	}

	pageSpecificData["CSRFField"] = template.HTML("")
	if csrf.Token(r) != "" {
		pageSpecificData["CSRFField"] = csrf.TemplateField(r)
	}

	if _, exists := pageSpecificData["MessageStatus"]; !exists {
		pageSpecificData["MessageStatus"] = r.URL.Query().Get("status")
	}
	if _, exists := pageSpecificData["Message"]; !exists {
		pageSpecificData["Message"] = r.URL.Query().Get("message")
	}

	return pageSpecificData
}
