// Package server carries the built-in chat client page served at the root
// route.
package server

const chatPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Roomcast</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; display: flex; gap: 20px; }
        #main { flex: 3; }
        #sidebar { flex: 1; border-left: 1px solid #ccc; padding-left: 15px; }
        #messages {
            border: 1px solid #ccc;
            height: 320px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        .meta { color: gray; font-size: 0.8em; margin-left: 6px; }
        .admin { color: #555; font-style: italic; }
        .error { color: #a00; }
        input[type="text"] { padding: 5px; margin-right: 10px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:disabled { background-color: #999; }
    </style>
</head>
<body>
    <div id="main">
        <h1>Roomcast</h1>
        <div id="join-form">
            <input type="text" id="username" placeholder="Display name">
            <input type="text" id="room" placeholder="Room">
            <button id="joinButton" onclick="join()">Join</button>
        </div>
        <div id="messages"></div>
        <div>
            <input type="text" id="messageInput" placeholder="Type a message..." disabled>
            <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
            <button id="locationButton" onclick="sendLocation()" disabled>Share location</button>
        </div>
    </div>
    <div id="sidebar">
        <h2 id="roomName"></h2>
        <ul id="users"></ul>
    </div>

    <script>
        let ws = null;
        const messagesDiv = document.getElementById('messages');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');
        const locationButton = document.getElementById('locationButton');
        const acks = {};

        function addLine(html, cls) {
            const el = document.createElement('div');
            el.className = cls || '';
            el.innerHTML = html;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function fmtTime(ms) {
            return new Date(ms).toLocaleTimeString();
        }

        function send(event, data, onAck) {
            (acks[event] = acks[event] || []).push(onAck || function () {});
            ws.send(JSON.stringify({ event: event, data: data }));
        }

        function handleEvent(env) {
            const data = env.data || {};
            switch (env.event) {
                case 'ack': {
                    const queue = acks[data.for] || [];
                    const cb = queue.shift();
                    if (cb) cb(data.error || '');
                    break;
                }
                case 'message': {
                    const cls = data.username === 'Admin' ? 'admin' : '';
                    addLine('<strong>' + data.username + '</strong>' +
                        '<span class="meta">' + fmtTime(data.createdAt) + '</span> ' +
                        data.text, cls);
                    break;
                }
                case 'locationMessage': {
                    addLine('<strong>' + data.username + '</strong>' +
                        '<span class="meta">' + fmtTime(data.createdAt) + '</span> ' +
                        '<a href="' + data.url + '" target="_blank">My current location</a>');
                    break;
                }
                case 'roomDate': {
                    document.getElementById('roomName').textContent = data.room;
                    const list = document.getElementById('users');
                    list.innerHTML = '';
                    (data.users || []).forEach(function (name) {
                        const li = document.createElement('li');
                        li.textContent = name;
                        list.appendChild(li);
                    });
                    break;
                }
            }
        }

        function join() {
            const username = document.getElementById('username').value.trim();
            const room = document.getElementById('room').value.trim();
            const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(proto + location.host + '/ws');

            ws.onopen = function () {
                send('join', { username: username, room: room }, function (error) {
                    if (error) {
                        addLine(error, 'error');
                        ws.close();
                        return;
                    }
                    document.getElementById('join-form').style.display = 'none';
                    messageInput.disabled = false;
                    sendButton.disabled = false;
                    locationButton.disabled = false;
                });
            };

            ws.onmessage = function (evt) {
                evt.data.split('\n').forEach(function (frame) {
                    if (frame) handleEvent(JSON.parse(frame));
                });
            };

            ws.onclose = function () {
                addLine('Disconnected', 'admin');
                messageInput.disabled = true;
                sendButton.disabled = true;
                locationButton.disabled = true;
            };
        }

        function sendMessage() {
            const text = messageInput.value.trim();
            if (!text) return;
            sendButton.disabled = true;
            send('sendMessage', { text: text }, function (error) {
                sendButton.disabled = false;
                messageInput.value = '';
                messageInput.focus();
                if (error) addLine(error, 'error');
            });
        }

        function sendLocation() {
            if (!navigator.geolocation) {
                addLine('Geolocation is not supported by your browser.', 'error');
                return;
            }
            locationButton.disabled = true;
            navigator.geolocation.getCurrentPosition(function (position) {
                send('sendLocation', {
                    latitude: position.coords.latitude,
                    longitude: position.coords.longitude
                }, function () {
                    locationButton.disabled = false;
                });
            });
        }

        messageInput.addEventListener('keypress', function (e) {
            if (e.key === 'Enter') sendMessage();
        });
    </script>
</body>
</html>`
