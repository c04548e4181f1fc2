// Package ports defines the interfaces between the application core and its
// external collaborators: the catalog and history gateways, the intent
// classifier and entity extractor, and the fulfillment notifier. Adapters
// under internal/adapters implement them.
package ports
