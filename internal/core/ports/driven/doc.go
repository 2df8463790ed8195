// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for ingestion to function:
//
//   - Extractor: Turns one file format into text
//   - PostProcessor: Cleans and chunks extracted text
//   - ConfigStore: Application configuration
//   - PromptStore: Generator prompt templates
//
// # Optional Interfaces
//
// These can be nil - the pipeline bootstrap degrades to a lesser tier:
//
//   - DocumentStore: Record persistence and similarity search
//   - EmbeddingService: Generates vector embeddings for records and queries
//   - LLMService: Language model used by the generator
//   - Retriever: Ranks stored records for a question
//   - Generator: Produces an answer from retrieved context
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or post-processor package
package driven
