// Package remote implements the analyzer and estimator collaborators against a
// remote inspection API over HTTP.
//
// The API accepts base64 images in JSON bodies and answers with the same reply
// shapes the vision package decodes from the model, so both implementations
// share the wire package. Transport failures and replies whose status is
// "error" are reported as services.ErrUnavailable.
package remote
