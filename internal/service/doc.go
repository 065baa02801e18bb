// Package service contains the application services that orchestrate domain
// entities and stores: card CRUD with ownership checks, the shared query
// façade behind every card read path, attempt tracking, and user
// registration, login, and study progress.
package service
