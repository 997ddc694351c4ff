package sqlite

var schema = []string{
	`CREATE TABLE IF NOT EXISTS transcripts (
        transcript_id TEXT PRIMARY KEY,
        title TEXT NOT NULL DEFAULT '',
        source_audio TEXT NOT NULL DEFAULT '',
        text TEXT NOT NULL,
        chunk_count INTEGER NOT NULL DEFAULT 0,
        created_at INTEGER NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_transcripts_created ON transcripts(created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS summaries (
        summary_id TEXT PRIMARY KEY,
        transcript_id TEXT NOT NULL REFERENCES transcripts(transcript_id) ON DELETE CASCADE,
        query TEXT NOT NULL DEFAULT '',
        summary TEXT NOT NULL,
        action_items TEXT NOT NULL DEFAULT '[]',
        decisions TEXT NOT NULL DEFAULT '[]',
        key_points TEXT NOT NULL DEFAULT '[]',
        topics TEXT NOT NULL DEFAULT '[]',
        participants TEXT NOT NULL DEFAULT '[]',
        notes TEXT NOT NULL DEFAULT '',
        model TEXT NOT NULL DEFAULT '',
        attempts INTEGER NOT NULL DEFAULT 1,
        created_at INTEGER NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_summaries_transcript_created ON summaries(transcript_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS summary_chunks (
        summary_id TEXT NOT NULL REFERENCES summaries(summary_id) ON DELETE CASCADE,
        position INTEGER NOT NULL,
        chunk_id TEXT NOT NULL,
        PRIMARY KEY (summary_id, position)
    )`,
}
