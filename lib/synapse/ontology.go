// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import "strings"

// Vocabulary prefixes. Every fact written or read by the daemon uses
// terms under one of these namespaces.
const (
	// Ontology is the swarm vocabulary: tasks, agents, repositories
	// and their properties.
	Ontology = "http://swarm.os/ontology/"

	// CAISI is the control vocabulary: operational status, status
	// change events, and command approval requests.
	CAISI = "http://nist.gov/caisi/"

	// RDF is the standard rdf-syntax namespace (used for rdf:type).
	RDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	// Prov is the W3C provenance namespace.
	Prov = "http://www.w3.org/ns/prov#"
)

// Entity types.
const (
	TypeTask              = Ontology + "Task"
	TypeAgent             = Ontology + "Agent"
	TypeRepository        = Ontology + "Repository"
	TypeSpendEvent        = Ontology + "SpendEvent"
	TypeStatusChangeEvent = CAISI + "StatusChangeEvent"
)

// Predicates.
const (
	PredType          = RDF + "type"
	PredInternalState = Ontology + "internalState"
	PredTitle         = Ontology + "title"
	PredName          = Ontology + "name"
	PredShortName     = Ontology + "shortName"
	PredClass         = Ontology + "class"
	PredStatus        = Ontology + "status"
	PredHasPopulation = Ontology + "hasPopulation"
	PredDate          = Ontology + "date"
	PredAmount        = Ontology + "amount"

	PredOperationalStatus = CAISI + "operationalStatus"
	PredNewStatus         = CAISI + "newStatus"
	PredHasStatusHistory  = CAISI + "hasStatusHistory"
	PredApprovalStatus    = CAISI + "approvalStatus"

	PredGeneratedAtTime = Prov + "generatedAtTime"
	PredWasAttributedTo = Prov + "wasAttributedTo"
)

// ControlSubject is the singleton node carrying the system's
// operational status and its status-change history.
const ControlSubject = CAISI + "SystemControl"

// CardSubject returns the fact subject for a board card.
func CardSubject(cardID string) string {
	return "http://swarm.os/trello/card/" + cardID
}

// AgentSubject returns the fact subject for an agent.
func AgentSubject(agentID string) string {
	return "http://swarm.os/agent/" + agentID
}

// RepositorySubject returns the fact subject for a repository.
func RepositorySubject(repoID string) string {
	return "http://swarm.os/repository/" + repoID
}

// StatusEventSubject returns the fact subject for a status change
// event. The id is a fresh UUID minted by the caller.
func StatusEventSubject(eventID string) string {
	return CAISI + "event/status/" + eventID
}

// RequestSubject returns the fact subject for a command approval
// request. Operators may paste either the full URI or the bare id;
// callers should pass bare ids through this function and full URIs
// through unchanged.
func RequestSubject(requestID string) string {
	return CAISI + "request/" + requestID
}

// Literal wraps a string value in double quotes for ingestion. The
// store distinguishes literals (quoted) from URIs (bare): predicates
// like internalState take literal objects, rdf:type takes a URI.
func Literal(value string) string {
	return `"` + value + `"`
}

// CleanValue strips literal quoting and URI angle brackets from a
// value. Query results arrive in the store's surface syntax; callers
// always want the bare value.
func CleanValue(value string) string {
	return strings.Trim(value, `"<>`)
}
