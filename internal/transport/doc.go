// Package transport provides the net/http implementation of
// resource.Transport used by the MDS client.
package transport
