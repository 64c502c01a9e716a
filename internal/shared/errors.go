package shared

import "fmt"

// SwarmError is the base error type for all synapse-go errors.
type SwarmError struct {
	Message string
	Code    string
	Details map[string]interface{}
}

func (e *SwarmError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewSwarmError creates a new SwarmError.
func NewSwarmError(message, code string, details map[string]interface{}) *SwarmError {
	return &SwarmError{
		Message: message,
		Code:    code,
		Details: details,
	}
}

// ConfigurationError signals a missing or invalid swarm or task identifier
// or configuration value.
type ConfigurationError struct {
	SwarmError
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(message string, details map[string]interface{}) *ConfigurationError {
	return &ConfigurationError{
		SwarmError: SwarmError{
			Message: message,
			Code:    "CONFIGURATION_ERROR",
			Details: details,
		},
	}
}

// NotFoundError signals that an operation targeted a missing identifier.
type NotFoundError struct {
	SwarmError
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(message string, details map[string]interface{}) *NotFoundError {
	return &NotFoundError{
		SwarmError: SwarmError{
			Message: message,
			Code:    "NOT_FOUND",
			Details: details,
		},
	}
}

// AgentNotFoundError signals that a task references an unknown agent.
type AgentNotFoundError struct {
	SwarmError
}

// NewAgentNotFoundError creates a new AgentNotFoundError.
func NewAgentNotFoundError(agentID string) *AgentNotFoundError {
	return &AgentNotFoundError{
		SwarmError: SwarmError{
			Message: fmt.Sprintf("agent %s not found", agentID),
			Code:    "AGENT_NOT_FOUND",
			Details: map[string]interface{}{"agentId": agentID},
		},
	}
}

// NoEligibleAgentError signals an empty candidate set for a strategy.
// Callers must treat this as "no assignment", not as a crash.
type NoEligibleAgentError struct {
	SwarmError
}

// NewNoEligibleAgentError creates a new NoEligibleAgentError.
func NewNoEligibleAgentError(details map[string]interface{}) *NoEligibleAgentError {
	return &NoEligibleAgentError{
		SwarmError: SwarmError{
			Message: "no eligible agent for task",
			Code:    "NO_ELIGIBLE_AGENT",
			Details: details,
		},
	}
}

// NoAgentAssignedError signals that an individual task has no assigned agent.
type NoAgentAssignedError struct {
	SwarmError
}

// NewNoAgentAssignedError creates a new NoAgentAssignedError.
func NewNoAgentAssignedError(taskID string) *NoAgentAssignedError {
	return &NoAgentAssignedError{
		SwarmError: SwarmError{
			Message: fmt.Sprintf("task %s has no assigned agent", taskID),
			Code:    "NO_AGENT_ASSIGNED",
			Details: map[string]interface{}{"taskId": taskID},
		},
	}
}

// NoResultsError signals consensus attempted over zero successful results.
type NoResultsError struct {
	SwarmError
}

// NewNoResultsError creates a new NoResultsError.
func NewNoResultsError(taskID string) *NoResultsError {
	return &NoResultsError{
		SwarmError: SwarmError{
			Message: fmt.Sprintf("no successful results for task %s", taskID),
			Code:    "NO_RESULTS",
			Details: map[string]interface{}{"taskId": taskID},
		},
	}
}

// ValidationDegradedError is non-fatal: it is attached to a result as a
// degraded validation record rather than propagated as a task failure.
type ValidationDegradedError struct {
	SwarmError
}

// NewValidationDegradedError creates a new ValidationDegradedError.
func NewValidationDegradedError(message string, details map[string]interface{}) *ValidationDegradedError {
	return &ValidationDegradedError{
		SwarmError: SwarmError{
			Message: message,
			Code:    "VALIDATION_DEGRADED",
			Details: details,
		},
	}
}
