package domain

// Post is a generated blog post as handed from generation to storage.
type Post struct {
	Topic   string
	ModelID string
	Body    string
}

// PostRecord is the index entry written for every stored post.
type PostRecord struct {
	PK        string
	SK        string
	ID        string
	Topic     string
	ModelID   string
	Bucket    string
	Key       string
	Length    int
	CreatedAt string
	TTL       int64
}
