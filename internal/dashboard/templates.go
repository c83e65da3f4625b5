package dashboard

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Credit Risk Simulator (Soft Voting)</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
        .container { max-width: 1100px; margin: 0 auto; display: grid; grid-template-columns: 320px 1fr; gap: 20px; }
        .card { background: white; border-radius: 8px; padding: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        label { display: block; margin-top: 12px; font-weight: 600; }
        input { width: 100%; padding: 8px; box-sizing: border-box; }
        button { margin-top: 16px; width: 100%; padding: 10px; background: #2c3e50; color: white; border: 0; border-radius: 4px; cursor: pointer; }
        .error { background: #fdecea; color: #b71c1c; padding: 12px; border-radius: 4px; }
        .metric { font-size: 1.6em; font-weight: bold; }
        .low_to_moderate { color: #2e7d32; }
        .moderate_to_high { color: #f9a825; }
        .high { color: #c62828; }
        table { width: 100%; border-collapse: collapse; margin-top: 12px; }
        th, td { text-align: left; padding: 6px; border-bottom: 1px solid #eee; }
        .failed { color: #c62828; }
    </style>
</head>
<body>
<h1>Credit Risk Simulator (Soft Voting)</h1>
<p>Enter the applicant data to estimate the repayment probability as the average of the models' probabilities.</p>
<div class="container">
    <div class="card">
        <h2>Applicant</h2>
        <form method="POST" action="/assess">
            <label for="income">Annual Income ({{.Currency}})</label>
            <input id="income" name="income" type="number" min="0" step="1000" value="{{.Form.Income}}">
            <label for="age">Age</label>
            <input id="age" name="age" type="number" min="18" max="100" step="1" value="{{.Form.Age}}">
            <label for="loan_amount">Requested Loan ({{.Currency}})</label>
            <input id="loan_amount" name="loan_amount" type="number" min="0" step="100" value="{{.Form.LoanAmount}}">
            <button type="submit">Analyze Risk and Suggest Limit</button>
        </form>
        <p><small>Models: {{range $i, $m := .Models}}{{if $i}}, {{end}}{{$m}}{{else}}none{{end}}</small></p>
    </div>
    <div class="card">
        <h2>Results</h2>
        {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
        {{with .Result}}
        <p>Average Repayment Probability</p>
        <div class="metric">{{.MeanRepay}}</div>
        <p>Suggested Credit Limit</p>
        <div class="metric">{{.SuggestedLimit}}</div>
        <p>Risk</p>
        <div class="metric {{.CategoryKey}}">{{.Category}}</div>
        <p><strong>Recommendation:</strong> {{.Recommendation}}</p>
        <h3>Model Details ({{.ModelsUsed}} used)</h3>
        <table>
            <tr><th>Model</th><th>Repay</th><th>Default</th></tr>
            {{range .Models}}
            <tr{{if .Failed}} class="failed" title="{{.Reason}}"{{end}}><td>{{.Model}}</td><td>{{.Repay}}</td><td>{{.Default}}</td></tr>
            {{end}}
        </table>
        {{else}}{{if not .Error}}<p>Fill in the applicant data and press the button.</p>{{end}}{{end}}
    </div>
</div>
<script>
    const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
    ws.onmessage = (event) => {
        const msg = JSON.parse(event.data);
        if (msg.type === 'assessment') {
            console.log('assessment', msg.assessment.id, msg.assessment.category);
        }
    };
</script>
</body>
</html>
`))
