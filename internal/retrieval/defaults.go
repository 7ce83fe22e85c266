package retrieval

// DefaultKnowledgeSource marks documents from the built-in knowledge set.
const DefaultKnowledgeSource = "default_knowledge"

// DefaultKnowledge returns the built-in software architecture knowledge
// set. It seeds any empty index so retrieval never comes up empty for lack
// of an external corpus.
func DefaultKnowledge() []Document {
	return []Document{
		{
			ID:     "microservices_benefits",
			Source: DefaultKnowledgeSource,
			Content: `Microservices Architecture Benefits:
- Independent deployment: Each service can be deployed separately
- Technology diversity: Different services can use different tech stacks
- Scalability: Individual services can scale independently
- Fault isolation: Failure in one service doesn't bring down the whole system
- Team autonomy: Small teams can own and manage individual services
Source: Software Architecture Best Practices`,
		},
		{
			ID:     "microservices_challenges",
			Source: DefaultKnowledgeSource,
			Content: `Microservices Architecture Challenges:
- Distributed system complexity: Network latency, message serialization
- Data consistency: Managing transactions across services is difficult
- Operational overhead: More services mean more deployments, monitoring
- Testing complexity: Integration testing becomes more challenging
- Service discovery and load balancing required
Source: Software Architecture Best Practices`,
		},
		{
			ID:     "monolith_benefits",
			Source: DefaultKnowledgeSource,
			Content: `Monolithic Architecture Benefits:
- Simplicity: Single codebase, easier to understand and develop
- Easy debugging: All code in one place, straightforward debugging
- Performance: No network overhead between components
- ACID transactions: Easy to maintain data consistency
- Simple deployment: One artifact to deploy
Source: Software Architecture Best Practices`,
		},
		{
			ID:     "monolith_challenges",
			Source: DefaultKnowledgeSource,
			Content: `Monolithic Architecture Challenges:
- Scaling limitations: Must scale entire application, not just busy parts
- Technology lock-in: Entire app uses same tech stack
- Deployment risk: Any change requires full redeployment
- Team coordination: Large teams working on same codebase cause conflicts
- Long build times as application grows
Source: Software Architecture Best Practices`,
		},
		{
			ID:     "sql_vs_nosql",
			Source: DefaultKnowledgeSource,
			Content: `SQL vs NoSQL Database Comparison:
SQL Databases (PostgreSQL, MySQL):
- ACID compliance for data integrity
- Complex queries with JOINs
- Fixed schema, good for structured data
- Vertical scaling primarily

NoSQL Databases (MongoDB, Cassandra):
- Flexible schema for evolving data
- Horizontal scaling built-in
- Better for unstructured/semi-structured data
- Eventually consistent (in most cases)
Source: Designing Data-Intensive Applications`,
		},
		{
			ID:     "event_driven",
			Source: DefaultKnowledgeSource,
			Content: `Event-Driven Architecture:
Benefits:
- Loose coupling between services
- Better scalability and resilience
- Real-time data processing
- Audit trail of all events

Challenges:
- Eventual consistency complexity
- Event ordering and deduplication
- Debugging distributed flows
- Message broker dependency
Source: Software Architecture Patterns`,
		},
		{
			ID:     "api_design",
			Source: DefaultKnowledgeSource,
			Content: `API Design Best Practices:
REST API Guidelines:
- Use nouns for resources, HTTP verbs for actions
- Version your APIs (v1, v2)
- Return appropriate HTTP status codes
- Implement pagination for large datasets
- Use HATEOAS for discoverability

GraphQL Considerations:
- Single endpoint, flexible queries
- Client specifies needed data
- Reduces over-fetching and under-fetching
Source: API Design Guidelines`,
		},
		{
			ID:     "cloud_patterns",
			Source: DefaultKnowledgeSource,
			Content: `Cloud Architecture Patterns:
- Circuit Breaker: Prevent cascade failures
- Retry with backoff: Handle transient failures
- Bulkhead: Isolate critical resources
- Sidecar: Deploy components alongside services
- Ambassador: Proxy for external services
- CQRS: Separate read and write models
Source: Cloud Design Patterns`,
		},
	}
}
