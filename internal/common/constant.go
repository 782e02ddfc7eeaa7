// Package common contains shared constants and sentinel errors used across
// annokeeper components.
package common

// DeveloperTokenHeaderName is the HTTP header that carries the card service
// developer token on outbound requests.
const DeveloperTokenHeaderName = "X-DOMO-Developer-Token"

// JSONContentType is sent as both Accept and Content-Type to the card service.
const JSONContentType = "application/json; charset=utf-8"
