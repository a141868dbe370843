package protoflow

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	hmac "github.com/alexellis/hmac"
)

var (
	BLANK_MODIFIER = func(data []byte) ([]byte, error) { return data, nil }
)

// FuncErrorHandler the error handler for OnFailure() options
type FuncErrorHandler func(error) error

// Modifier definition for Modify() call
type Modifier func([]byte) ([]byte, error)

// RespHandler definition for OnResponse() option on operation
type RespHandler func(*http.Response) ([]byte, error)

// ReqHandler definition for RequestHdlr() option on operation
type ReqHandler func(*http.Request)

// FunctionInvoker executes a registered function by name
type FunctionInvoker interface {
	Invoke(function string, data []byte, param map[string][]string) ([]byte, error)
}

type StepOperation struct {
	// Operations
	Function    string   // The name of the registered function
	CallbackUrl string   // Callback Url
	Mod         Modifier // Modifier

	// Optional Options
	Header map[string]string   // The HTTP call header
	Param  map[string][]string // The Parameter in Query string

	RetryCount    int           // Retry attempts for the operation
	RetryInterval time.Duration // Delay between retry attempts

	FailureHandler FuncErrorHandler // The Failure handler of the operation
	Requesthandler ReqHandler       // The http request handler of the operation
	OnResphandler  RespHandler      // The http Resp handler of the operation
}

// createFunction Create a function with execution name
func createFunction(name string) *StepOperation {
	operation := &StepOperation{}
	operation.Function = name
	operation.Header = make(map[string]string)
	operation.Param = make(map[string][]string)
	return operation
}

// createModifier Create a modifier
func createModifier(mod Modifier) *StepOperation {
	operation := &StepOperation{}
	operation.Mod = mod
	return operation
}

// createCallback Create a callback
func createCallback(url string) *StepOperation {
	operation := &StepOperation{}
	operation.CallbackUrl = url
	operation.Header = make(map[string]string)
	operation.Param = make(map[string][]string)
	return operation
}

func (operation *StepOperation) addheader(key string, value string) {
	operation.Header[key] = value
}

func (operation *StepOperation) addparam(key string, value string) {
	array, ok := operation.Param[key]
	if !ok {
		operation.Param[key] = make([]string, 1)
		operation.Param[key][0] = value
	} else {
		operation.Param[key] = append(array, value)
	}
}

func (operation *StepOperation) addFailureHandler(handler FuncErrorHandler) {
	operation.FailureHandler = handler
}

func (operation *StepOperation) addResponseHandler(handler RespHandler) {
	operation.OnResphandler = handler
}

func (operation *StepOperation) addRequestHandler(handler ReqHandler) {
	operation.Requesthandler = handler
}

func (operation *StepOperation) setRetry(count int, interval time.Duration) {
	operation.RetryCount = count
	operation.RetryInterval = interval
}

func (operation *StepOperation) GetParams() map[string][]string {
	return operation.Param
}

func (operation *StepOperation) GetHeaders() map[string]string {
	return operation.Header
}

func (operation *StepOperation) GetId() string {
	id := "modifier"
	switch {
	case operation.Function != "":
		id = operation.Function
	case operation.CallbackUrl != "":
		suffix := operation.CallbackUrl
		if len(suffix) > 12 {
			suffix = suffix[len(suffix)-12:]
		}
		id = "callback-" + suffix
	}
	return id
}

func (operation *StepOperation) GetProperties() map[string][]string {

	result := make(map[string][]string)

	isMod := "false"
	isFunction := "false"
	isCallback := "false"
	hasFailureHandler := "false"
	hasResponseHandler := "false"

	if operation.Mod != nil {
		isMod = "true"
	}
	if operation.Function != "" {
		isFunction = "true"
	}
	if operation.CallbackUrl != "" {
		isCallback = "true"
	}
	if operation.FailureHandler != nil {
		hasFailureHandler = "true"
	}
	if operation.OnResphandler != nil {
		hasResponseHandler = "true"
	}

	result["isMod"] = []string{isMod}
	result["isFunction"] = []string{isFunction}
	result["isCallback"] = []string{isCallback}
	result["hasFailureHandler"] = []string{hasFailureHandler}
	result["hasResponseHandler"] = []string{hasResponseHandler}

	return result
}

// Execute runs the operation against the data
// option carries the runtime pieces: request-id, invoker and sign-key
func (operation *StepOperation) Execute(data []byte, option map[string]interface{}) ([]byte, error) {
	var result []byte
	var err error

	switch {
	// If function
	case operation.Function != "":
		result, err = operation.executeFunction(data, option)
		if err != nil {
			err = fmt.Errorf("Function(%s), error: function execution failed, %v",
				operation.Function, err)
			if operation.FailureHandler != nil {
				err = operation.FailureHandler(err)
			}
			if err != nil {
				return nil, err
			}
		}

	// If callback
	case operation.CallbackUrl != "":
		err = operation.executeCallback(data, option)
		if err != nil {
			err = fmt.Errorf("Callback(%s), error: callback failed, %v",
				operation.CallbackUrl, err)
			if operation.FailureHandler != nil {
				err = operation.FailureHandler(err)
			}
			if err != nil {
				return nil, err
			}
		}
		// callback doesn't alter the data
		result = data

	// If modifier
	default:
		result, err = operation.Mod(data)
		if err != nil {
			return nil, fmt.Errorf("error: Failed at modifier, %v", err)
		}
		if result == nil {
			result = []byte("")
		}
	}

	return result, nil
}

// executeFunction executes a registered function via the invoker,
// retrying as configured
func (operation *StepOperation) executeFunction(data []byte, option map[string]interface{}) ([]byte, error) {
	invoker, ok := option["invoker"].(FunctionInvoker)
	if !ok {
		return nil, fmt.Errorf("no function invoker available")
	}

	var result []byte
	var err error

	attempts := operation.RetryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && operation.RetryInterval > 0 {
			time.Sleep(operation.RetryInterval)
		}
		result, err = invoker.Invoke(operation.Function, data, operation.Param)
		if err == nil {
			return result, nil
		}
	}
	return nil, err
}

// executeCallback posts the data to the callback url,
// the body is signed when a sign key is provided
func (operation *StepOperation) executeCallback(data []byte, option map[string]interface{}) error {
	cburl := operation.CallbackUrl
	queryString := makeQueryStringFromParam(operation.Param)
	if queryString != "" {
		cburl = cburl + queryString
	}

	httpreq, err := http.NewRequest(http.MethodPost, cburl, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("cannot connect to callback on URL: %s", cburl)
	}
	httpreq.Header.Add("Content-Type", "application/json")
	for key, value := range operation.Header {
		httpreq.Header.Add(key, value)
	}

	if key, ok := option["sign-key"].(string); ok && key != "" {
		hash := hmac.Sign(data, []byte(key))
		httpreq.Header.Set("X-Hub-Signature", "sha1="+fmt.Sprintf("%x", hash))
	}

	if operation.Requesthandler != nil {
		operation.Requesthandler(httpreq)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(httpreq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if operation.OnResphandler != nil {
		_, err = operation.OnResphandler(resp)
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := ioutil.ReadAll(resp.Body)
		return fmt.Errorf("invalid return status %d, %s", resp.StatusCode, string(body))
	}
	return nil
}

// makeQueryStringFromParam create query string from the provided params
func makeQueryStringFromParam(params map[string][]string) string {
	if params == nil {
		return ""
	}
	values := url.Values{}
	for key, array := range params {
		for _, value := range array {
			values.Add(key, value)
		}
	}
	encoded := values.Encode()
	if encoded == "" {
		return ""
	}
	return "?" + encoded
}
