// Package services contains the client-side application services used by the
// CLI: session handling on top of the local metadata store, and the photo
// workflow that moves bytes straight to object storage.
package services
