package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create runs table
			CREATE TABLE runs (
				id UUID PRIMARY KEY,
				source VARCHAR(100) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('running', 'completed', 'failed')),
				dry_run BOOLEAN NOT NULL DEFAULT false,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				phases JSONB NOT NULL DEFAULT '[]',
				report JSONB
			);

			CREATE INDEX idx_runs_source ON runs(source);
			CREATE INDEX idx_runs_status ON runs(status);
			CREATE INDEX idx_runs_started_at ON runs(started_at);

			-- Create mappings table
			CREATE TABLE mappings (
				run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				kind VARCHAR(50) NOT NULL,
				source_id VARCHAR(255) NOT NULL,
				target_id VARCHAR(255) NOT NULL DEFAULT '',
				key VARCHAR(255) NOT NULL DEFAULT '',
				status VARCHAR(20) NOT NULL CHECK (status IN ('intent', 'done')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				PRIMARY KEY (run_id, kind, source_id)
			);

			CREATE INDEX idx_mappings_run_id ON mappings(run_id);
			CREATE INDEX idx_mappings_status ON mappings(status);
		`,
	}
}
