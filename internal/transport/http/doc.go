// Package http contains the chi handlers of the gainers service.
package http
