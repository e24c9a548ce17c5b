package preview

// pageTemplate takes the title, the annotated body markup and the client
// script.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<div id="rangeui-root">%s</div>
%s
</body>
</html>
`

// clientScript forwards clicks and input to the server and refreshes the
// root whenever the server reports mutations.
const clientScript = `
<script>
(function() {
    'use strict';

    var root = document.getElementById('rangeui-root');
    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;

    function send(target, type, value) {
        var el = target.closest('[data-rid]');
        if (!el) {
            return;
        }
        fetch('/events/' + el.getAttribute('data-rid') + '/' + type, {
            method: 'POST',
            body: value || ''
        });
    }

    root.addEventListener('click', function(e) {
        send(e.target, 'click');
    });
    root.addEventListener('input', function(e) {
        send(e.target, 'input', e.target.value);
    });

    function refresh() {
        fetch('/tree?ids=1').then(function(res) {
            return res.text();
        }).then(function(html) {
            root.innerHTML = html;
        });
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onopen = function() {
            console.log('[rangeui] Preview connected');
            reconnectDelay = 1000;
            refresh();
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'mutations':
                    refresh();
                    break;

                case 'error':
                    console.error('[rangeui] Render error:', msg.error);
                    break;
            }
        };

        ws.onclose = function() {
            console.log('[rangeui] Connection lost, reconnecting in', reconnectDelay + 'ms');
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    connect();
})();
</script>
`
