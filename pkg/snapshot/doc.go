// Package snapshot publishes rendered documents as static HTML pages.
//
// A Publisher serializes a memhost document into a complete HTML page and
// writes it to a Store under a content-addressed key:
//
//	store := snapshot.NewS3Store(client, "my-bucket", "snapshots/")
//	pub := snapshot.NewPublisher(store)
//	obj, err := pub.Publish(ctx, doc, "home")
//	// obj.Key == "snapshots/home-3f2a9c1b7d4e.html"
//
// Three stores are provided: S3Store (AWS S3 through aws-sdk-go-v2),
// DiskStore (a local directory) and MemoryStore (tests).
package snapshot
