// Package secret resolves environment-sourced credentials referenced from
// configuration, such as provider API keys written as "${OPENAI_API_KEY}".
package secret
