package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create workflows table; the graph is stored as its exported document
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'published', 'unpublished')),
				owner VARCHAR(255) NOT NULL DEFAULT '',
				document JSONB NOT NULL DEFAULT '{"nodes": [], "edges": []}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				published_at TIMESTAMP WITH TIME ZONE,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_owner ON workflows(owner);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);
		`,
		2: `
			-- Look up workflows by the node kinds and trigger types they contain
			CREATE INDEX idx_workflows_document_nodes ON workflows USING GIN ((document -> 'nodes') jsonb_path_ops);
		`,
	}
}
