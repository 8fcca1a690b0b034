package service

import "comply-rag/internal/models"

// sourceName derives the display label of a chunk. Chunks from the same
// policy share a name even when their source ids differ.
func sourceName(chunk models.EvidenceChunk) string {
	switch chunk.SourceType {
	case models.SourceTypePolicy:
		if chunk.SourceLabel != "" {
			return "Policy: " + chunk.SourceLabel
		}
		return "Policy: " + chunk.SourceID
	case models.SourceTypeContext:
		return "Context Q&A"
	case models.SourceTypeManualAnswer:
		return "Manual Answer"
	case models.SourceTypeDocument, models.SourceTypeKnowledgeBase:
		if chunk.SourceLabel != "" {
			return chunk.SourceLabel
		}
	}
	return ""
}

func dedupKey(chunk models.EvidenceChunk) string {
	if name := sourceName(chunk); name != "" {
		return name
	}
	return string(chunk.SourceType) + ":" + chunk.SourceID
}

// DeduplicateSources collapses chunks into one Source per dedup key,
// keeping the highest scoring chunk. Keys keep first-seen order.
func DeduplicateSources(chunks []models.EvidenceChunk) []models.Source {
	index := make(map[string]int, len(chunks))
	sources := make([]models.Source, 0, len(chunks))

	for _, chunk := range chunks {
		key := dedupKey(chunk)
		src := models.Source{
			SourceType:     chunk.SourceType,
			SourceName:     sourceName(chunk),
			SourceID:       chunk.SourceID,
			RelevanceScore: chunk.RelevanceScore,
		}

		i, seen := index[key]
		if !seen {
			index[key] = len(sources)
			sources = append(sources, src)
			continue
		}
		if chunk.RelevanceScore > sources[i].RelevanceScore {
			sources[i] = src
		}
	}

	return sources
}
